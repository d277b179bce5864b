package chat

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// State is the lifecycle state of a session.
type State int

const (
	StateConnecting State = iota // accepted, no username yet
	StateActive                  // registered, dispatch loop running
	StateClosing                 // cleanup in progress
	StateClosed                  // terminal
)

// String returns the string representation of State.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateActive:
		return "ACTIVE"
	case StateClosing:
		return "CLOSING"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Session is the server-side state for one connected, identified client.
// The connection worker owns the session; the hub holds a non-owning
// lookup reference by username.
type Session struct {
	ID       string
	Username string // assigned once at handshake
	conn     Conn

	mu    sync.Mutex // guards state
	wmu   sync.Mutex // serializes writes
	state State

	// Guarded by the hub lock: mutated by the peer's worker too.
	peer string // current 1:1 call partner, "" when not paired
	room string // current room membership, "" when not in a room
}

// NewSession wraps a connection that has not completed its handshake yet.
func NewSession(conn Conn) *Session {
	return &Session{
		ID:    uuid.NewString(),
		conn:  conn,
		state: StateConnecting,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Activate records the handshake username and moves the session to ACTIVE.
func (s *Session) Activate(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Username = username
	s.state = StateActive
}

// BeginClosing moves the session to CLOSING. Returns false if cleanup has
// already started, so teardown runs exactly once per session.
func (s *Session) BeginClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosing || s.state == StateClosed {
		return false
	}
	s.state = StateClosing
	return true
}

// Write sends one payload to this session's client. Writes are serialized;
// a session that has fully closed fails fast without touching the
// connection. Close is deliberately not excluded here so a stuck writer
// can still be unblocked by closing the connection underneath it.
func (s *Session) Write(payload string) error {
	s.mu.Lock()
	closed := s.state == StateClosed
	s.mu.Unlock()
	if closed {
		return fmt.Errorf("session %s is closed", s.ID)
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.conn.WriteFrame(payload)
}

// Close closes the underlying connection and moves the session to CLOSED.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	_ = s.conn.Close()
}

// RemoteAddr returns the connection's remote address for logging.
func (s *Session) RemoteAddr() string {
	return s.conn.RemoteAddr()
}
