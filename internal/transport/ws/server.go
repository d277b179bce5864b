package ws

import (
	"log"
	"net"
	"net/http"
	"sync"

	"github.com/gobwas/ws"

	"github.com/qyliu/chatrelay/internal/chat"
)

// Server upgrades HTTP requests to WebSocket and hands each connection to
// the dispatcher. It exists for deployments that keep WebSocket clients on
// a separate port; the unified server handles both on one.
type Server struct {
	address    string
	listener   net.Listener
	dispatcher *chat.Dispatcher
	server     *http.Server
	wg         sync.WaitGroup

	// Upgraded connections are hijacked out of the http.Server, so its
	// Close never reaches them; Stop closes them from here. This also
	// covers clients that upgrade but never send a username frame.
	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// New creates a WebSocket server that routes through the provided
// dispatcher.
func New(address string, dispatcher *chat.Dispatcher) *Server {
	return &Server{
		address:    address,
		dispatcher: dispatcher,
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start starts accepting WebSocket connections. It blocks until Stop is
// called or the listener fails.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.server = &http.Server{Handler: mux}

	log.Printf("WebSocket server started on %s", listener.Addr().String())

	if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the WebSocket server and closes every open connection,
// registered or not.
func (s *Server) Stop() {
	if s.server != nil {
		s.server.Close()
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

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
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
