package server_test

import (
	"strings"
	"testing"
	"time"

	"github.com/qyliu/chatrelay/internal/chat"
	"github.com/qyliu/chatrelay/internal/server"
	"github.com/qyliu/chatrelay/pkg/protocol"
)

func runConsole(t *testing.T, dispatcher *chat.Dispatcher, input string) string {
	t.Helper()
	var out strings.Builder
	console := server.NewConsole(dispatcher, &out)
	console.Run(strings.NewReader(input))
	return out.String()
}

func TestConsole_ListEmpty(t *testing.T) {
	d := chat.NewDispatcher(chat.NewHub())

	out := runConsole(t, d, "list\n")
	if !strings.Contains(out, "在线用户 (0人): 无") {
		t.Errorf("list output = %q", out)
	}
}

func TestConsole_ListAndCount(t *testing.T) {
	srv := startUnified(t)
	dialTCP(t, srv.Addr(), "alice")
	dialTCP(t, srv.Addr(), "bob")

	d := srv.Dispatcher()

	out := runConsole(t, d, "list\ncount\n")
	if !strings.Contains(out, "在线用户 (2人): alice, bob") {
		t.Errorf("list output = %q", out)
	}
	if !strings.Contains(out, "当前在线人数: 2") {
		t.Errorf("count output = %q", out)
	}
}

func TestConsole_Status(t *testing.T) {
	srv := startUnified(t)
	dialTCP(t, srv.Addr(), "alice")

	out := runConsole(t, srv.Dispatcher(), "status\n")
	if !strings.Contains(out, "在线人数: 1") || !strings.Contains(out, "在线用户: alice") {
		t.Errorf("status output = %q", out)
	}
}

func TestConsole_Kick(t *testing.T) {
	srv := startUnified(t)
	alice := dialTCP(t, srv.Addr(), "alice")

	out := runConsole(t, srv.Dispatcher(), "kick alice\n")
	if !strings.Contains(out, "已踢出用户: alice") {
		t.Errorf("kick output = %q", out)
	}

	notice, err := protocol.ReadFrame(alice)
	if err != nil {
		t.Fatalf("kicked client read error: %v", err)
	}
	if notice != "【系统】您已被管理员踢出聊天室" {
		t.Errorf("kick notice = %q", notice)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.ClientCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := srv.ClientCount(); got != 0 {
		t.Errorf("ClientCount() = %d after kick, want 0", got)
	}
}

func TestConsole_KickUnknown(t *testing.T) {
	d := chat.NewDispatcher(chat.NewHub())

	out := runConsole(t, d, "kick ghost\n")
	if !strings.Contains(out, "用户 ghost 不在线或不存在") {
		t.Errorf("kick output = %q", out)
	}
}

func TestConsole_Broadcast(t *testing.T) {
	srv := startUnified(t)
	alice := dialTCP(t, srv.Addr(), "alice")

	out := runConsole(t, srv.Dispatcher(), "broadcast 服务器即将重启\n")
	if !strings.Contains(out, "已发送系统广播: 服务器即将重启") {
		t.Errorf("broadcast output = %q", out)
	}

	msg, err := protocol.ReadFrame(alice)
	if err != nil {
		t.Fatalf("client read error: %v", err)
	}
	if msg != "【系统广播】服务器即将重启" {
		t.Errorf("client received %q", msg)
	}
}

func TestConsole_UnknownCommand(t *testing.T) {
	d := chat.NewDispatcher(chat.NewHub())

	out := runConsole(t, d, "dance\n")
	if !strings.Contains(out, "未知命令") {
		t.Errorf("output = %q", out)
	}
}

func TestConsole_Help(t *testing.T) {
	d := chat.NewDispatcher(chat.NewHub())

	out := runConsole(t, d, "help\n")
	for _, want := range []string{"list/online", "kick", "broadcast"} {
		if !strings.Contains(out, want) {
			t.Errorf("help output missing %q: %q", want, out)
		}
	}
}
