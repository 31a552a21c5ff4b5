package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPayload is the largest payload one frame can carry, bounded by the
// 2-byte length prefix.
const MaxPayload = 0xFFFF

// WriteFrame writes one frame to w.
// Wire format: [2 bytes LE: len(payload)][payload]. The prefix counts the
// payload only, not itself. The frame goes out in a single Write call so
// message-oriented transports carry one frame per message.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayload {
		return fmt.Errorf("frame payload too large: %d bytes", len(payload))
	}
	buf := make([]byte, 2+len(payload))
	binary.LittleEndian.PutUint16(buf[:2], uint16(len(payload)))
	copy(buf[2:], payload)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one frame from r, blocking until the 2-byte header and
// then the full payload are available. Partial reads are accumulated by
// io.ReadFull. Returns the payload bytes without the length prefix.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	n := int(binary.LittleEndian.Uint16(header[:]))
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", n, err)
	}
	return payload, nil
}
