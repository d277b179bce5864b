package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// Transport selects how the client reaches the server.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "ws"
)

// FileSink receives decoded incoming file shares. The library never
// chooses paths or touches the filesystem itself; the caller decides
// where, or whether, to persist.
type FileSink interface {
	Save(name string, data []byte) error
}

// Client is a chat relay client. Inbound payloads are delivered on the
// Messages channel except file shares, which are decoded and handed to
// the FileSink when one is set.
type Client struct {
	address   string
	username  string
	transport string
	sink      FileSink

	mu   sync.RWMutex
	conn clientConn

	messages chan string
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a client for the given server address and username.
// Transport is TransportTCP or TransportWebSocket.
func New(address, username, transport string) *Client {
	return &Client{
		address:   address,
		username:  username,
		transport: transport,
		messages:  make(chan string, 16),
		done:      make(chan struct{}),
	}
}

// SetFileSink routes decoded incoming files to sink instead of the
// Messages channel. Must be called before Connect.
func (c *Client) SetFileSink(sink FileSink) {
	c.sink = sink
}

// Connect dials the server, sends the username handshake, and starts the
// receive loop.
func (c *Client) Connect() error {
	var conn clientConn
	switch c.transport {
	case TransportTCP:
		raw, err := net.Dial("tcp", c.address)
		if err != nil {
			return fmt.Errorf("failed to connect to server: %w", err)
		}
		conn = newTCPClientConn(raw)
	case TransportWebSocket:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		raw, _, _, err := ws.Dial(ctx, "ws://"+c.address)
		if err != nil {
			return fmt.Errorf("failed to connect to server: %w", err)
		}
		conn = newWSClientConn(raw)
	default:
		return fmt.Errorf("unknown transport %q", c.transport)
	}

	if err := conn.WriteFrame(c.username); err != nil {
		conn.Close()
		return fmt.Errorf("failed to send username: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(1)
	go c.receiveLoop()

	return nil
}

// Disconnect closes the connection and stops the receive loop.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.wg.Wait()
}

// IsConnected returns whether the client currently holds a connection.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// Messages returns the channel of inbound payloads. The channel is closed
// when the connection ends.
func (c *Client) Messages() <-chan string {
	return c.messages
}

// SendChat sends a plain group chat line.
func (c *Client) SendChat(text string) error {
	return c.send(text)
}

// SendPrivate sends a private message to the named user.
func (c *Client) SendPrivate(target, text string) error {
	return c.send(fmt.Sprintf("@%s %s", target, text))
}

// SendFile shares a file with the whole room.
func (c *Client) SendFile(name string, data []byte) error {
	return c.send(protocol.FileMessage(name, data))
}

// SendPrivateFile shares a file with one named user.
func (c *Client) SendPrivateFile(target, name string, data []byte) error {
	return c.send(fmt.Sprintf("@%s %s", target, protocol.FileMessage(name, data)))
}

// SendRaw sends a pre-built protocol payload verbatim. Callers driving
// call signaling or rooms compose the payload themselves.
func (c *Client) SendRaw(payload string) error {
	return c.send(payload)
}

// RequestUserList asks the server for the current roster.
func (c *Client) RequestUserList() error {
	return c.send(protocol.CmdUserListRequest)
}

// Quit asks the server for a graceful disconnect.
func (c *Client) Quit() error {
	return c.send(protocol.CmdQuit)
}

func (c *Client) send(payload string) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return errors.New("not connected to server")
	}
	if err := conn.WriteFrame(payload); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (c *Client) receiveLoop() {
	defer c.wg.Done()
	defer close(c.messages)

	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()
		if conn == nil {
			return
		}

		payload, err := conn.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				select {
				case <-c.done:
				default:
					log.Printf("Error reading from server: %v", err)
				}
			}
			return
		}

		if c.sink != nil {
			if saved := c.saveIncomingFile(payload); saved {
				continue
			}
		}

		select {
		case c.messages <- payload:
		case <-c.done:
			return
		}
	}
}

// saveIncomingFile detects a file share anywhere in an inbound line (the
// relay prefixes sender annotations before the /FILE body), decodes it,
// and hands it to the sink. Reports whether the payload was consumed.
func (c *Client) saveIncomingFile(payload string) bool {
	body, ok := extractFileBody(payload)
	if !ok {
		return false
	}

	cmd := protocol.Parse(body)
	if cmd.Kind != protocol.KindFile {
		return false
	}

	data, err := cmd.File.Decode()
	if err != nil {
		log.Printf("Failed to decode incoming file %s: %v", cmd.File.Name, err)
		return true
	}
	if err := c.sink.Save(cmd.File.Name, data); err != nil {
		log.Printf("Failed to save incoming file %s: %v", cmd.File.Name, err)
	}
	return true
}
