package chat

import (
	"errors"
	"io"
	"log"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// Dispatcher runs the per-connection session lifecycle: handshake,
// registration, the read/dispatch loop, and teardown. One instance is
// shared by every transport.
type Dispatcher struct {
	hub *Hub

	// PrivateEcho controls whether private messages and private file
	// shares echo an annotated copy back to the sender. Group chat never
	// echoes; the deployed clients rely on the asymmetry but it is kept
	// switchable here.
	PrivateEcho bool
}

// NewDispatcher creates a Dispatcher on the given hub with private echo
// enabled.
func NewDispatcher(hub *Hub) *Dispatcher {
	return &Dispatcher{hub: hub, PrivateEcho: true}
}

// Hub returns the session registry this dispatcher routes through.
func (d *Dispatcher) Hub() *Hub { return d.hub }

// HandleConn owns a freshly accepted connection for its whole life. The
// first frame is the client's username; a failed handshake closes the
// connection without ever registering it. After registration the loop
// reads and routes frames until /quit, EOF, or a framing error.
func (d *Dispatcher) HandleConn(conn Conn) {
	s := NewSession(conn)

	username, err := conn.ReadFrame()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Printf("Handshake from %s failed: %v", conn.RemoteAddr(), err)
		}
		s.Close()
		return
	}
	if username == "" {
		s.Close()
		return
	}

	s.Activate(username)
	if err := d.hub.Register(s); err != nil {
		log.Printf("Rejected %s from %s: %v", username, conn.RemoteAddr(), err)
		_ = s.Write(protocol.NameTakenNotice(username))
		s.Close()
		return
	}

	log.Printf("%s joined from %s (session %s)", username, conn.RemoteAddr(), s.ID)

	// Implicit handshake acknowledgement: an unsolicited roster to the
	// new client, and the join notice to everyone else.
	_ = s.Write(protocol.UserList(d.hub.Usernames()))
	d.hub.Broadcast(protocol.JoinNotice(username), s)

	defer d.teardown(s)

	for {
		payload, err := conn.ReadFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				log.Printf("Read from %s failed: %v", username, err)
			}
			return
		}
		if !d.dispatch(s, payload) {
			return
		}
	}
}

// teardown is the CLOSING phase: best-effort cleanup of pairing and room
// state, unregistration, and the departure notice.
func (d *Dispatcher) teardown(s *Session) {
	d.hub.drop(s)
	log.Printf("%s left (session %s)", s.Username, s.ID)
}

// dispatch classifies one frame payload and routes it. It returns false
// when the session asked to terminate. Routing failures never escape: the
// only error a client ever sees is a system notice in its own stream.
func (d *Dispatcher) dispatch(s *Session, payload string) bool {
	cmd := protocol.Parse(payload)

	switch cmd.Kind {
	case protocol.KindQuit:
		return false

	case protocol.KindChat:
		d.hub.Broadcast(protocol.AnnotateChat(s.Username, cmd.Text), s)

	case protocol.KindPrivate:
		d.private(s, cmd.Target, cmd.Text)

	case protocol.KindFile:
		d.hub.Broadcast(protocol.AnnotateChat(s.Username, cmd.Raw), s)

	case protocol.KindPrivateFile:
		d.private(s, cmd.Target, cmd.File.Message())

	case protocol.KindFileMalformed:
		_ = s.Write(protocol.MalformedFileNotice())

	case protocol.KindCallRequest:
		d.signal(s, cmd.Target, protocol.CallInvite(s.Username))

	case protocol.KindCallAccept:
		if target, ok := d.hub.Find(cmd.Target); ok {
			if err := target.Write(protocol.CallStart(s.Username)); err != nil {
				_ = s.Write(protocol.OfflineNotice(cmd.Target))
			} else {
				d.hub.SetPairing(s, target)
			}
		} else {
			_ = s.Write(protocol.OfflineNotice(cmd.Target))
		}

	case protocol.KindCallReject:
		d.hub.DeliverTo(cmd.Target, protocol.CallRejected(s.Username))

	case protocol.KindCallEnd:
		d.hub.ClearPairing(s)
		d.hub.DeliverTo(cmd.Target, protocol.CallEnded(s.Username))

	case protocol.KindCallData:
		// Media frames are fire-and-forget: silently dropped when the
		// target is gone.
		d.hub.DeliverTo(cmd.Target, protocol.CallData(s.Username, cmd.Blob))

	case protocol.KindRoomInvite:
		d.hub.Broadcast(cmd.Raw, s)

	case protocol.KindRoomJoin:
		d.hub.SetRoom(s, cmd.Room)
		d.broadcastExceptUser(cmd.Raw, cmd.User)

	case protocol.KindRoomLeave:
		d.hub.ClearRoom(s)
		d.broadcastExceptUser(cmd.Raw, cmd.User)

	case protocol.KindRoomData:
		d.broadcastExceptUser(cmd.Raw, cmd.User)

	case protocol.KindCameraStatus:
		d.broadcastExceptUser(cmd.Raw, cmd.User)

	case protocol.KindUserListRequest:
		_ = s.Write(protocol.UserList(d.hub.Usernames()))
	}

	return true
}

// private routes an annotated private message or file share: one copy to
// the target and, when PrivateEcho is on, one copy back to the sender. A
// missing target or a failed delivery yields a system notice to the
// sender only; the echo is sent only once delivery succeeded, so the
// sender never sees both.
func (d *Dispatcher) private(s *Session, target, body string) {
	if !d.hub.DeliverTo(target, protocol.AnnotatePrivate(s.Username, body)) {
		_ = s.Write(protocol.OfflineNotice(target))
		return
	}
	if d.PrivateEcho {
		_ = s.Write(protocol.AnnotatePrivateEcho(s.Username, target, body))
	}
}

// signal forwards a call-signaling line to one named target, with a
// system notice back to the sender when the target is not online.
func (d *Dispatcher) signal(s *Session, target, payload string) {
	if !d.hub.DeliverTo(target, payload) {
		_ = s.Write(protocol.OfflineNotice(target))
	}
}

// broadcastExceptUser delivers a payload to every session except the one
// named inside the command itself, which is how the room-signaling
// variants address their audience.
func (d *Dispatcher) broadcastExceptUser(payload, username string) {
	exclude, _ := d.hub.Find(username)
	d.hub.Broadcast(payload, exclude)
}
