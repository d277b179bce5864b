package chat

import (
	"log"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// DeliverTo sends one payload to the named session. It reports success or
// failure and never propagates an error: a target that disconnects between
// lookup and send is a delivery failure like any other.
func (h *Hub) DeliverTo(username, payload string) bool {
	s, ok := h.Find(username)
	if !ok {
		return false
	}
	if err := s.Write(payload); err != nil {
		log.Printf("Failed to deliver to %s: %v", username, err)
		return false
	}
	return true
}

// Broadcast sends one payload to every registered session except exclude.
// It iterates a snapshot so slow peers never block the registry. Sessions
// whose write fails are collected and dropped after the iteration
// completes: one broken peer never aborts delivery to the rest, and no
// error surfaces to the original sender.
func (h *Hub) Broadcast(payload string, exclude *Session) {
	var failed []*Session

	for _, s := range h.Snapshot() {
		if exclude != nil && s.ID == exclude.ID {
			continue
		}
		if err := s.Write(payload); err != nil {
			log.Printf("Broadcast write to %s failed: %v", s.Username, err)
			failed = append(failed, s)
		}
	}

	for _, s := range failed {
		h.drop(s)
	}
}

// drop tears down a session, whether it quit, hit EOF, or proved dead
// during delivery: clear its call pairing and room membership (notifying
// the peers), remove it from the registry, close it, and announce the
// departure. The departure broadcast absorbs further failures the same
// way, so a cascade of dead peers unwinds one at a time.
func (h *Hub) drop(s *Session) {
	if !s.BeginClosing() {
		return
	}

	if peer, ok := h.ClearPairing(s); ok {
		_ = peer.Write(protocol.CallEnded(s.Username))
	}
	if room := h.ClearRoom(s); room != "" {
		h.Broadcast(protocol.RoomLeaveNotice(room, s.Username), s)
	}

	h.Unregister(s)
	s.Close()
	h.Broadcast(protocol.LeaveNotice(s.Username), nil)
}
