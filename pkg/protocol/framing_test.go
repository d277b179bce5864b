package protocol_test

import (
	"bytes"
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/qyliu/chatrelay/pkg/protocol"
)

func TestReadFrame_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty payload", ""},
		{"ascii text", "hello room"},
		{"utf8 text", "张三：你好"},
		{"pipe-delimited command", "/FILE|notes.txt|5|aGVsbG8="},
		{"large payload", strings.Repeat("x", 1<<20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := protocol.WriteFrame(&buf, tt.payload); err != nil {
				t.Fatalf("WriteFrame() error = %v", err)
			}

			got, err := protocol.ReadFrame(&buf)
			if err != nil {
				t.Fatalf("ReadFrame() error = %v", err)
			}
			if got != tt.payload {
				t.Errorf("ReadFrame() = %q, want %q", got, tt.payload)
			}
		})
	}
}

func TestWriteFrame_WireFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := protocol.WriteFrame(&buf, "hi"); err != nil {
		t.Fatalf("WriteFrame() error = %v", err)
	}

	want := []byte{0x00, 0x00, 0x00, 0x02, 'h', 'i'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteFrame() wrote % x, want % x", buf.Bytes(), want)
	}
}

func TestReadFrame_CleanClose(t *testing.T) {
	_, err := protocol.ReadFrame(bytes.NewReader(nil))
	if err != io.EOF {
		t.Errorf("ReadFrame() error = %v, want io.EOF", err)
	}
}

func TestReadFrame_TruncatedLength(t *testing.T) {
	_, err := protocol.ReadFrame(bytes.NewReader([]byte{0x00, 0x00}))

	var fe *protocol.FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("ReadFrame() error = %v, want *FramingError", err)
	}
}

func TestReadFrame_TruncatedPayload(t *testing.T) {
	// Declares 10 bytes, delivers 3, then the stream closes.
	data := []byte{0x00, 0x00, 0x00, 0x0a, 'a', 'b', 'c'}
	_, err := protocol.ReadFrame(bytes.NewReader(data))

	var fe *protocol.FramingError
	if !errors.As(err, &fe) {
		t.Fatalf("ReadFrame() error = %v, want *FramingError", err)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadFrame() error = %v, want wrapped io.ErrUnexpectedEOF", err)
	}
}

func TestWriteFrame_BrokenPipe(t *testing.T) {
	server, client := net.Pipe()
	server.Close()
	defer client.Close()

	err := protocol.WriteFrame(client, "hello")

	var fe *protocol.FramingError
	if !errors.As(err, &fe) {
		t.Errorf("WriteFrame() error = %v, want *FramingError", err)
	}
}

func TestReadFrame_OverPipe(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		_ = protocol.WriteFrame(server, "over the wire")
	}()

	got, err := protocol.ReadFrame(client)
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if got != "over the wire" {
		t.Errorf("ReadFrame() = %q, want %q", got, "over the wire")
	}
}
