package net

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/ghack/client/internal/protocol"
	"go.uber.org/zap"
)

// pipePair returns a Conn and the raw peer end of an in-memory stream.
// net.Pipe is synchronous, so the peer side must run in a goroutine.
func pipePair(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	c := NewConn(client, zap.NewNop())
	t.Cleanup(func() {
		c.Close()
		server.Close()
	})
	return c, server
}

func TestConnSendReceive(t *testing.T) {
	c, server := pipePair(t)

	// Peer echoes the frame it receives.
	go func() {
		payload, err := ReadFrame(server)
		if err != nil {
			return
		}
		WriteFrame(server, payload)
	}()

	if err := c.Send(protocol.NewConnect(protocol.Version)); err != nil {
		t.Fatalf("send: %v", err)
	}
	m, err := c.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if m.Type != protocol.MsgConnect || m.Connect == nil || m.Connect.Version != protocol.Version {
		t.Errorf("received %+v", m)
	}
}

func TestConnReceiveMalformedNonFatal(t *testing.T) {
	c, server := pipePair(t)

	go func() {
		// Truncated CONNECT inside a well-formed frame, then a good one.
		WriteFrame(server, []byte{byte(protocol.MsgConnect), 1})
		payload, _ := protocol.Encode(protocol.NewConnect(2))
		WriteFrame(server, payload)
	}()

	_, err := c.Receive()
	var malformed *protocol.MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("err = %v, want *protocol.MalformedError", err)
	}
	if errors.Is(err, ErrConnectionClosed) {
		t.Error("malformed payload must not be a connection error")
	}

	// Framing stayed synchronized.
	m, err := c.Receive()
	if err != nil {
		t.Fatalf("receive after malformed: %v", err)
	}
	if m.Connect == nil || m.Connect.Version != 2 {
		t.Errorf("received %+v", m)
	}
}

func TestConnCloseUnblocksReceive(t *testing.T) {
	c, _ := pipePair(t)

	errc := make(chan error, 1)
	go func() {
		_, err := c.Receive()
		errc <- err
	}()

	// Give the receiver a moment to block on the read.
	time.Sleep(10 * time.Millisecond)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	select {
	case err := <-errc:
		if !errors.Is(err, ErrConnectionClosed) {
			t.Errorf("err = %v, want ErrConnectionClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Receive did not unblock after Close")
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	c, _ := pipePair(t)
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
	if !c.IsClosed() {
		t.Error("IsClosed = false after Close")
	}
}

func TestConnSendAfterClose(t *testing.T) {
	c, _ := pipePair(t)
	c.Close()
	err := c.Send(protocol.NewMove(protocol.Vec{X: 1}))
	if !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("err = %v, want ErrConnectionClosed", err)
	}
	if _, err := c.Receive(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("receive err = %v, want ErrConnectionClosed", err)
	}
}
