// Package chat provides the core relay logic shared by all transports:
// sessions, the session registry, delivery, and command dispatch.
package chat

// Conn abstracts one bidirectional framed connection. Transports adapt
// their wire format to whole text payloads so the relay never sees framing.
type Conn interface {
	// ReadFrame blocks until one complete payload is available.
	// Returns io.EOF on a clean close before any data.
	ReadFrame() (string, error)

	// WriteFrame sends one complete payload.
	WriteFrame(payload string) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}
