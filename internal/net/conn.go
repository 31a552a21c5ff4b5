package net

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ghack/client/internal/protocol"
	"github.com/ghack/client/internal/replay"
	"go.uber.org/zap"
)

var (
	// ErrConnectionClosed reports that the transport ended or a read/write
	// failed. Fatal: the session cannot continue on this connection.
	ErrConnectionClosed = errors.New("connection closed")

	// ErrSendFailed reports that a frame could not be written in full.
	ErrSendFailed = errors.New("send failed")
)

// Conn owns one byte-stream transport and moves whole messages across it.
// Receive blocks the caller until a full frame arrives; Close from another
// goroutine unblocks a pending Receive by closing the underlying stream.
type Conn struct {
	rwc io.ReadWriteCloser
	log *zap.Logger

	journal *replay.Journal

	mu        sync.Mutex // protects writes
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewConn wraps an established byte stream.
func NewConn(rwc io.ReadWriteCloser, log *zap.Logger) *Conn {
	return &Conn{rwc: rwc, log: log}
}

// Dial opens a TCP connection to addr.
func Dial(addr string, timeout time.Duration, log *zap.Logger) (*Conn, error) {
	c, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	log.Info("connected", zap.String("server", addr))
	return NewConn(c, log), nil
}

// AttachJournal records every inbound frame payload to j. Call before the
// first Receive.
func (c *Conn) AttachJournal(j *replay.Journal) {
	c.journal = j
}

// Send encodes m, frames it, and writes the whole frame. There is no
// partial-write success: any failure returns ErrSendFailed.
func (c *Conn) Send(m *protocol.Message) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	payload, err := protocol.Encode(m)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	c.mu.Lock()
	err = WriteFrame(c.rwc, payload)
	c.mu.Unlock()
	if err != nil {
		if c.closed.Load() {
			return ErrConnectionClosed
		}
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	c.log.Debug("TX", zap.Stringer("type", m.Type), zap.Int("len", len(payload)))
	return nil
}

// Receive blocks until one full frame is available, then decodes it.
// Transport failures return ErrConnectionClosed. A payload that fails to
// decode inside a valid frame returns *protocol.MalformedError; framing
// stays synchronized and the caller may keep receiving.
func (c *Conn) Receive() (*protocol.Message, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}

	payload, err := ReadFrame(c.rwc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}

	if c.journal != nil {
		if err := c.journal.Record(payload); err != nil {
			c.log.Warn("journal write failed", zap.Error(err))
		}
	}

	m, err := protocol.Decode(payload)
	if err != nil {
		return nil, err
	}
	c.log.Debug("RX", zap.Stringer("type", m.Type), zap.Int("len", len(payload)))
	return m, nil
}

// Close releases the transport. Idempotent; subsequent Send and Receive
// fail with ErrConnectionClosed, and a Receive blocked in another goroutine
// fails promptly.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.rwc.Close()
	})
	return err
}

// IsClosed reports whether Close has been called.
func (c *Conn) IsClosed() bool {
	return c.closed.Load()
}
