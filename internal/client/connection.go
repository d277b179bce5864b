// Package client provides the chat relay client library used by the
// terminal client and the integration tests.
package client

import (
	"bufio"
	"net"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// clientConn abstracts the client side of a connection: whole payloads in,
// whole payloads out, regardless of transport.
type clientConn interface {
	ReadFrame() (string, error)
	WriteFrame(payload string) error
	Close() error
}

// tcpClientConn speaks the length-prefixed framing over a raw TCP stream.
type tcpClientConn struct {
	conn   net.Conn
	reader *bufio.Reader
	wmu    sync.Mutex
}

func newTCPClientConn(conn net.Conn) *tcpClientConn {
	return &tcpClientConn{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *tcpClientConn) ReadFrame() (string, error) {
	return protocol.ReadFrame(c.reader)
}

func (c *tcpClientConn) WriteFrame(payload string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return protocol.WriteFrame(c.conn, payload)
}

func (c *tcpClientConn) Close() error {
	return c.conn.Close()
}

// wsClientConn carries each payload as one binary WebSocket message.
type wsClientConn struct {
	conn net.Conn
	wmu  sync.Mutex
}

func newWSClientConn(conn net.Conn) *wsClientConn {
	return &wsClientConn{conn: conn}
}

func (c *wsClientConn) ReadFrame() (string, error) {
	data, err := wsutil.ReadServerBinary(c.conn)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *wsClientConn) WriteFrame(payload string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return wsutil.WriteClientBinary(c.conn, []byte(payload))
}

func (c *wsClientConn) Close() error {
	_ = wsutil.WriteClientMessage(c.conn, ws.OpClose, nil)
	return c.conn.Close()
}
