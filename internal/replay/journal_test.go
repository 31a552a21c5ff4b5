package replay

import (
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"
)

func TestJournalRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.journal")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	before := time.Now().Add(-time.Second)
	payloads := [][]byte{
		{1, 2, 3},
		{},
		{0xFF},
	}
	for _, p := range payloads {
		if err := j.Record(p); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if err := j.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	after := time.Now().Add(time.Second)

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()

	for i, want := range payloads {
		rec, err := r.Next()
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		if !bytes.Equal(rec.Payload, want) {
			t.Errorf("record %d payload = %v, want %v", i, rec.Payload, want)
		}
		if rec.At.Before(before) || rec.At.After(after) {
			t.Errorf("record %d timestamp %v outside [%v, %v]", i, rec.At, before, after)
		}
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("err after last record = %v, want io.EOF", err)
	}
}

func TestJournalAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.journal")

	for _, p := range [][]byte{{1}, {2}} {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		if err := j.Record(p); err != nil {
			t.Fatalf("record: %v", err)
		}
		if err := j.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}

	r, err := OpenReader(path)
	if err != nil {
		t.Fatalf("open reader: %v", err)
	}
	defer r.Close()
	var got [][]byte
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		got = append(got, rec.Payload)
	}
	if len(got) != 2 || got[0][0] != 1 || got[1][0] != 2 {
		t.Errorf("records = %v", got)
	}
}

func TestReaderTruncatedRecord(t *testing.T) {
	// A record cut off mid-header must not look like a clean end.
	r := NewReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := r.Next(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("err = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestRecordTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.journal")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer j.Close()
	if err := j.Record(make([]byte, 0x10000)); err == nil {
		t.Fatal("expected error for oversize record")
	}
}
