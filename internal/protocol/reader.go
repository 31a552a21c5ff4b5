package protocol

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is reported by Reader.Err when a read ran past the end of
// the payload.
var ErrTruncated = errors.New("payload truncated")

// Reader reads message fields from a decoded frame payload. All multi-byte
// fields are little-endian. Short reads return zero values and latch the
// truncated flag; callers check Err once after decoding a full variant.
type Reader struct {
	data      []byte
	off       int
	truncated bool
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		r.truncated = true
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		r.truncated = true
		r.off = len(r.data)
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadS reads a null-terminated UTF-8 string. A missing terminator counts
// as a truncated payload.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			s := string(r.data[start:r.off])
			r.off++ // skip null terminator
			return s
		}
		r.off++
	}
	r.truncated = true
	return string(r.data[start:r.off])
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		r.truncated = true
		remaining := r.data[r.off:]
		r.off = len(r.data)
		return remaining
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Err returns ErrTruncated if any read ran past the payload end.
func (r *Reader) Err() error {
	if r.truncated {
		return ErrTruncated
	}
	return nil
}
