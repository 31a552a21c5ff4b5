package net

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte{1, 2, 3, 4, 5}
	if err := WriteFrame(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.Len() != 2+len(payload) {
		t.Errorf("frame length = %d, want %d", buf.Len(), 2+len(payload))
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("payload = %v, want %v", got, payload)
	}
}

func TestFrameHeaderIsPayloadLengthOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte{0xAA, 0xBB, 0xCC}); err != nil {
		t.Fatalf("write: %v", err)
	}
	b := buf.Bytes()
	// Little-endian prefix counting the payload, not the header.
	if b[0] != 3 || b[1] != 0 {
		t.Errorf("header = [%d %d], want [3 0]", b[0], b[1])
	}
}

func TestTwoFramesInOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := WriteFrame(&buf, []byte("second")); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, want := range []string{"first", "second"} {
		got, err := ReadFrame(&buf)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if string(got) != want {
			t.Errorf("payload = %q, want %q", got, want)
		}
	}
}

func TestReadFramePartialReads(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, []byte("dribble")); err != nil {
		t.Fatalf("write: %v", err)
	}
	// One byte per Read call; ReadFrame must accumulate.
	got, err := ReadFrame(iotest.OneByteReader(&buf))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "dribble" {
		t.Errorf("payload = %q", got)
	}
}

func TestReadFrameEmptyPayload(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFrame(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("payload = %v, want empty", got)
	}
}

func TestReadFrameTruncated(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{5}},
		{"short payload", []byte{5, 0, 'a', 'b'}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tc.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
				t.Errorf("err = %v, want EOF-ish", err)
			}
		})
	}
}

func TestWriteFrameOversize(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteFrame(&buf, make([]byte, MaxPayload+1)); err == nil {
		t.Fatal("expected error for oversize payload")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %d bytes, want none", buf.Len())
	}
}

// singleWriteRecorder fails the test if a frame arrives split across
// multiple Write calls. Message-oriented transports depend on one frame
// per Write.
type singleWriteRecorder struct {
	writes int
	last   []byte
}

func (r *singleWriteRecorder) Write(p []byte) (int, error) {
	r.writes++
	r.last = append([]byte(nil), p...)
	return len(p), nil
}

func TestWriteFrameSingleWrite(t *testing.T) {
	var rec singleWriteRecorder
	if err := WriteFrame(&rec, []byte("atomic")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if rec.writes != 1 {
		t.Errorf("writes = %d, want 1", rec.writes)
	}
	if len(rec.last) != 2+len("atomic") {
		t.Errorf("frame = %v", rec.last)
	}
}
