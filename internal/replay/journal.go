// Package replay records inbound protocol frames to an append-only journal
// for post-mortem inspection of a session.
package replay

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Record is one journaled frame: the receive time and the raw payload as it
// came off the wire, before decoding.
type Record struct {
	At      time.Time
	Payload []byte
}

// Journal appends frame records to a file.
// On-disk format per record: [8B LE unix-millis][2B LE length][payload].
type Journal struct {
	mu sync.Mutex
	f  *os.File
	w  *bufio.Writer
}

// Open creates or appends to the journal file at path.
func Open(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Journal{f: f, w: bufio.NewWriter(f)}, nil
}

// Record appends one frame payload with the current timestamp.
func (j *Journal) Record(payload []byte) error {
	if len(payload) > 0xFFFF {
		return fmt.Errorf("journal record too large: %d bytes", len(payload))
	}
	var hdr [10]byte
	binary.LittleEndian.PutUint64(hdr[:8], uint64(time.Now().UnixMilli()))
	binary.LittleEndian.PutUint16(hdr[8:], uint16(len(payload)))

	j.mu.Lock()
	defer j.mu.Unlock()
	if _, err := j.w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	if _, err := j.w.Write(payload); err != nil {
		return fmt.Errorf("write journal record: %w", err)
	}
	return nil
}

// Close flushes and closes the journal file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.w.Flush(); err != nil {
		j.f.Close()
		return fmt.Errorf("flush journal: %w", err)
	}
	return j.f.Close()
}

// Reader iterates the records of a journal.
type Reader struct {
	r *bufio.Reader
	c io.Closer
}

// NewReader reads journal records from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// OpenReader opens the journal file at path for iteration.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	return &Reader{r: bufio.NewReader(f), c: f}, nil
}

// Next returns the next record, or io.EOF after the last one. A record cut
// short mid-write surfaces as io.ErrUnexpectedEOF.
func (r *Reader) Next() (*Record, error) {
	var hdr [10]byte
	if _, err := io.ReadFull(r.r, hdr[:1]); err != nil {
		return nil, err // clean EOF between records
	}
	if _, err := io.ReadFull(r.r, hdr[1:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	millis := int64(binary.LittleEndian.Uint64(hdr[:8]))
	n := int(binary.LittleEndian.Uint16(hdr[8:]))
	payload := make([]byte, n)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return &Record{At: time.UnixMilli(millis), Payload: payload}, nil
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	return r.c.Close()
}
