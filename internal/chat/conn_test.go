package chat_test

import (
	"errors"
	"io"
	"sync"

	"github.com/qyliu/chatrelay/internal/chat"
)

// mockConn is a mock implementation of chat.Conn for testing.
type mockConn struct {
	readCh     chan string
	closeCh    chan struct{}
	closeOnce  sync.Once
	mu         sync.Mutex
	written    []string
	writeErr   error
	remoteAddr string
}

func newMockConn(addr string) *mockConn {
	return &mockConn{
		readCh:     make(chan string, 10),
		closeCh:    make(chan struct{}),
		remoteAddr: addr,
	}
}

func (m *mockConn) ReadFrame() (string, error) {
	select {
	case <-m.closeCh:
		return "", io.EOF
	case payload, ok := <-m.readCh:
		if !ok {
			return "", io.EOF
		}
		return payload, nil
	}
}

func (m *mockConn) WriteFrame(payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	select {
	case <-m.closeCh:
		return errors.New("connection closed")
	default:
	}
	m.written = append(m.written, payload)
	return nil
}

func (m *mockConn) Close() error {
	m.closeOnce.Do(func() { close(m.closeCh) })
	return nil
}

func (m *mockConn) RemoteAddr() string {
	return m.remoteAddr
}

func (m *mockConn) FailWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = errors.New("forced write failure")
}

func (m *mockConn) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}

func (m *mockConn) Closed() bool {
	select {
	case <-m.closeCh:
		return true
	default:
		return false
	}
}

// Compile-time check that mockConn implements chat.Conn
var _ chat.Conn = (*mockConn)(nil)
