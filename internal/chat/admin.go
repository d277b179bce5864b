package chat

import "github.com/qyliu/chatrelay/pkg/protocol"

// Kick forcibly disconnects the named session: the target is notified,
// everyone else sees a kick announcement, and closing the connection
// unblocks the target's worker, which then runs the normal teardown.
// It reports whether the username was online.
func (d *Dispatcher) Kick(username string) bool {
	target, ok := d.hub.Find(username)
	if !ok {
		return false
	}

	_ = target.Write(protocol.KickedNotice())
	d.hub.Broadcast(protocol.KickBroadcast(username), target)
	target.Close()
	return true
}

// SystemBroadcast sends an operator message from the server console to
// every connected session.
func (d *Dispatcher) SystemBroadcast(text string) {
	d.hub.Broadcast(protocol.AdminBroadcast(text), nil)
}
