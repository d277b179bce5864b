package ws_test

import (
	"net"
	"testing"

	"github.com/gobwas/ws/wsutil"

	"github.com/qyliu/chatrelay/internal/chat"
	"github.com/qyliu/chatrelay/internal/transport/ws"
)

func TestConn_ImplementsInterface(t *testing.T) {
	var _ chat.Conn = (*ws.Conn)(nil)
}

func TestConn_ReadFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(server)

	go func() {
		_ = wsutil.WriteClientBinary(client, []byte("hello over ws"))
	}()

	payload, err := conn.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if payload != "hello over ws" {
		t.Errorf("ReadFrame() = %q, want %q", payload, "hello over ws")
	}
}

func TestConn_WriteFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(server)

	go func() {
		if err := conn.WriteFrame("from server"); err != nil {
			t.Errorf("WriteFrame() error = %v", err)
		}
	}()

	data, err := wsutil.ReadServerBinary(client)
	if err != nil {
		t.Fatalf("client read error: %v", err)
	}
	if string(data) != "from server" {
		t.Errorf("client received %q, want %q", data, "from server")
	}
}

func TestConn_Close(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	conn := ws.NewConn(server)

	go func() {
		// Drain the close frame so Close does not block on the pipe.
		_, _ = wsutil.ReadServerMessage(client, nil)
	}()

	if err := conn.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
