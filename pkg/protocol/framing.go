// Package protocol implements the chat relay wire protocol: length-prefixed
// text framing and the command grammar multiplexed over it.
//
// Every message, in both directions, is a uint32 big-endian length followed
// by exactly that many bytes of UTF-8 text. The same framing carries the
// username handshake and every subsequent message.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// FramingError reports a fatal wire-level failure on one connection: a
// truncated length prefix or payload, or a failed write. It is never fatal
// to other connections.
type FramingError struct {
	Op  string // "read length", "read payload", "write"
	Err error
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("framing: %s: %v", e.Op, e.Err)
}

func (e *FramingError) Unwrap() error { return e.Err }

// ReadFrame reads one length-prefixed frame and returns its payload.
//
// A clean close before any length byte returns io.EOF. A close after a
// partial length prefix or partial payload returns a *FramingError wrapping
// io.ErrUnexpectedEOF: the frame is truncated, never silently short.
func ReadFrame(r io.Reader) (string, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", &FramingError{Op: "read length", Err: err}
	}

	length := binary.BigEndian.Uint32(lenBuf[:])
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", &FramingError{Op: "read payload", Err: err}
	}

	return string(payload), nil
}

// WriteFrame writes the 4-byte big-endian length followed by the payload in
// a single write call.
func WriteFrame(w io.Writer, payload string) error {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(len(payload)))
	copy(buf[4:], payload)

	if _, err := w.Write(buf); err != nil {
		return &FramingError{Op: "write", Err: err}
	}
	return nil
}
