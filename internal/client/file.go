package client

import (
	"strings"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

// extractFileBody finds the "/FILE|..." body inside an inbound line. The
// relay annotates file shares the same way as chat ("sender：/FILE|..."
// or "[私聊来自sender] sender：/FILE|..."), so the body is wherever the
// prefix starts.
func extractFileBody(payload string) (string, bool) {
	idx := strings.Index(payload, protocol.CmdFile+"|")
	if idx < 0 {
		return "", false
	}
	return payload[idx:], true
}
