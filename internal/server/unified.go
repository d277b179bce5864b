package server

import (
	"fmt"
	"log"
	"net"
	"sync"

	"github.com/gobwas/ws"

	"github.com/qyliu/chatrelay/internal/chat"
	"github.com/qyliu/chatrelay/internal/transport/tcp"
	wstransport "github.com/qyliu/chatrelay/internal/transport/ws"
)

// UnifiedServer accepts both framed-TCP and WebSocket clients on one port.
// Each accepted connection is sniffed: HTTP requests are upgraded to
// WebSocket, everything else is treated as a framed TCP client. Both paths
// end in the same dispatcher, so the two client kinds share one roster.
type UnifiedServer struct {
	address    string
	listener   net.Listener
	dispatcher *chat.Dispatcher
	quit       chan struct{}
	wg         sync.WaitGroup

	// Accepted connections that have not finished their handshake yet are
	// not in the hub, so Stop tracks them here to unblock their workers.
	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// New creates a UnifiedServer routing through the provided dispatcher.
func New(address string, dispatcher *chat.Dispatcher) *UnifiedServer {
	return &UnifiedServer{
		address:    address,
		dispatcher: dispatcher,
		quit:       make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start starts accepting connections. It blocks until Stop is called or
// the listener fails.
func (s *UnifiedServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener

	log.Printf("Unified server started on %s (TCP and WebSocket)", listener.Addr().String())

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
					log.Printf("Failed to accept connection: %v", err)
					continue
				}
			}

			s.trackConn(conn)
			s.wg.Add(1)
			go s.handleConnection(conn)
		}
	}
}

// Stop stops the server and closes every open connection, registered or
// not, so no worker is left blocked on a silent client.
func (s *UnifiedServer) Stop() {
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

func (s *UnifiedServer) trackConn(conn net.Conn) {
	s.connMu.Lock()
	s.conns[conn] = struct{}{}
	s.connMu.Unlock()
}

func (s *UnifiedServer) untrackConn(conn net.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
}

// Addr returns the listening address.
func (s *UnifiedServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of registered sessions.
func (s *UnifiedServer) ClientCount() int {
	return s.dispatcher.Hub().Count()
}

// Dispatcher returns the dispatcher this server routes through, shared
// with the admin console.
func (s *UnifiedServer) Dispatcher() *chat.Dispatcher {
	return s.dispatcher
}

func (s *UnifiedServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrackConn(conn)

	kind, reader, err := detectProtocol(conn)
	if err != nil {
		log.Printf("Failed to sniff connection from %s: %v", conn.RemoteAddr(), err)
		conn.Close()
		return
	}

	switch kind {
	case protocolHTTP:
		buffered := &bufferedConn{Conn: conn, reader: reader}
		if _, err := ws.Upgrade(buffered); err != nil {
			log.Printf("Failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			return
		}
		s.dispatcher.HandleConn(wstransport.NewConn(buffered))
	case protocolTCP:
		s.dispatcher.HandleConn(tcp.NewConnWithReader(conn, reader))
	}
}
