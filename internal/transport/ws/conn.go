// Package ws provides the WebSocket transport for the chat relay.
package ws

import (
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
)

// Conn adapts a WebSocket connection to chat.Conn. Each protocol payload
// travels as one binary message; WebSocket messages are already delimited,
// so the uint32 length prefix of the raw-TCP path is not repeated here.
type Conn struct {
	conn net.Conn
	wmu  sync.Mutex
}

// NewConn wraps an upgraded server-side WebSocket connection.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// ReadFrame implements chat.Conn.
func (c *Conn) ReadFrame() (string, error) {
	data, err := wsutil.ReadClientBinary(c.conn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// WriteFrame implements chat.Conn.
func (c *Conn) WriteFrame(payload string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return wsutil.WriteServerBinary(c.conn, []byte(payload))
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	_ = wsutil.WriteServerMessage(c.conn, ws.OpClose, nil)
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
