package chat

import (
	"errors"
	"sync"
)

// ErrNameTaken is returned by Register when another live session already
// holds the requested username.
var ErrNameTaken = errors.New("username already registered")

// Hub is the process-wide session registry: the only datum mutated by
// every connection worker. A single mutex serializes all operations,
// including the call-pairing and room fields on individual sessions,
// which peers' workers mutate through the hub.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	order    []string // usernames in registration order, for stable rosters
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// Register adds a session under its username. A second session presenting
// a name that is still registered is rejected with ErrNameTaken.
func (h *Hub) Register(s *Session) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, taken := h.sessions[s.Username]; taken {
		return ErrNameTaken
	}
	h.sessions[s.Username] = s
	h.order = append(h.order, s.Username)
	return nil
}

// Unregister removes a session. It is a no-op when a different session
// holds the username, so a rejected duplicate can never evict the
// original registration.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cur, ok := h.sessions[s.Username]
	if !ok || cur.ID != s.ID {
		return
	}
	delete(h.sessions, s.Username)
	for i, name := range h.order {
		if name == s.Username {
			h.order = append(h.order[:i], h.order[i+1:]...)
			break
		}
	}
}

// Find looks up a session by exact, case-sensitive username.
func (h *Hub) Find(username string) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[username]
	return s, ok
}

// Snapshot returns a point-in-time copy of all sessions in registration
// order, safe to iterate without the lock. Delivery can block on a slow
// peer and must not stall registry mutations from other workers.
func (h *Hub) Snapshot() []*Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Session, 0, len(h.order))
	for _, name := range h.order {
		out = append(out, h.sessions[name])
	}
	return out
}

// Usernames returns all registered usernames in registration order.
func (h *Hub) Usernames() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.order...)
}

// Count returns the number of registered sessions.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// SetPairing records an active 1:1 call between two sessions, both
// directions.
func (h *Hub) SetPairing(a, b *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	a.peer = b.Username
	b.peer = a.Username
}

// ClearPairing dissolves the session's call pairing, if any, on both
// sides. The former partner is returned only while its back-reference
// still points at s; a partner that has since paired with someone else
// is left alone.
func (h *Hub) ClearPairing(s *Session) (*Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s.peer == "" {
		return nil, false
	}
	peerName := s.peer
	s.peer = ""
	peer, ok := h.sessions[peerName]
	if !ok || peer.peer != s.Username {
		return nil, false
	}
	peer.peer = ""
	return peer, true
}

// Peer returns the session's current call partner username, "" when the
// session is not paired.
func (h *Hub) Peer(s *Session) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return s.peer
}

// SetRoom records the session's room membership.
func (h *Hub) SetRoom(s *Session, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s.room = room
}

// ClearRoom clears the session's room membership and returns the room it
// was in, "" when it was not in one.
func (h *Hub) ClearRoom(s *Session) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := s.room
	s.room = ""
	return room
}

// Room returns the session's current room, "" when not in one.
func (h *Hub) Room(s *Session) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return s.room
}
