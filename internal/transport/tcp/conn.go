// Package tcp provides the raw TCP transport for the chat relay.
package tcp

import (
	"bufio"
	"net"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// Conn adapts net.Conn to chat.Conn, applying the length-prefixed framing
// to the byte stream.
type Conn struct {
	conn   net.Conn
	reader *bufio.Reader
}

// NewConn wraps a net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn, reader: bufio.NewReader(conn)}
}

// NewConnWithReader wraps a net.Conn whose first bytes were already
// consumed into a buffered reader during protocol detection.
func NewConnWithReader(conn net.Conn, reader *bufio.Reader) *Conn {
	return &Conn{conn: conn, reader: reader}
}

// ReadFrame implements chat.Conn.
func (c *Conn) ReadFrame() (string, error) {
	return protocol.ReadFrame(c.reader)
}

// WriteFrame implements chat.Conn.
func (c *Conn) WriteFrame(payload string) error {
	return protocol.WriteFrame(c.conn, payload)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
