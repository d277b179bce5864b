package tcp

import (
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/qyliu/chatrelay/internal/chat"
)

// Server accepts raw TCP connections and hands each to the dispatcher.
type Server struct {
	address    string
	listener   net.Listener
	dispatcher *chat.Dispatcher
	quit       chan struct{}
	wg         sync.WaitGroup

	// Connections that have not completed their handshake are not in the
	// hub yet; Stop closes them from here.
	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// New creates a TCP server that routes through the provided dispatcher.
func New(address string, dispatcher *chat.Dispatcher) *Server {
	return &Server{
		address:    address,
		dispatcher: dispatcher,
		quit:       make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start starts accepting TCP connections. It blocks until Stop is called
// or the listener fails.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener

	log.Printf("TCP server started on %s", listener.Addr().String())

	for {
		select {
		case <-s.quit:
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-s.quit:
					return nil
				default:
					log.Printf("Failed to accept TCP connection: %v", err)
					continue
				}
			}

			s.connMu.Lock()
			s.conns[conn] = struct{}{}
			s.connMu.Unlock()

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.dispatcher.HandleConn(NewConn(conn))
				s.connMu.Lock()
				delete(s.conns, conn)
				s.connMu.Unlock()
			}()
		}
	}
}

// Stop stops the TCP server and closes every open connection, registered
// or not.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	for _, sess := range s.dispatcher.Hub().Snapshot() {
		sess.Close()
	}
	s.connMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
