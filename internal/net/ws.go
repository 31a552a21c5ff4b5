package net

import (
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsStream adapts a WebSocket connection to the byte-stream interface the
// framing codec expects. Each Write becomes one binary WebSocket message
// (WriteFrame emits a frame in a single Write, so one frame maps to one
// message); reads buffer message payloads and hand out bytes as requested,
// so a frame may also span messages without losing sync.
type wsStream struct {
	ws       *websocket.Conn
	leftover []byte
}

func (s *wsStream) Read(p []byte) (int, error) {
	for len(s.leftover) == 0 {
		t, data, err := s.ws.ReadMessage()
		if err != nil {
			return 0, err
		}
		if t != websocket.BinaryMessage {
			continue // control and text messages carry no frame bytes
		}
		s.leftover = data
	}
	n := copy(p, s.leftover)
	s.leftover = s.leftover[n:]
	return n, nil
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.ws.Close()
}

// DialWS opens a WebSocket connection to url (ws:// or wss://) and wraps it
// as a framed transport.
func DialWS(url string, timeout time.Duration, log *zap.Logger) (*Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	ws, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	log.Info("connected", zap.String("server", url), zap.String("transport", "websocket"))
	return NewConn(&wsStream{ws: ws}, log), nil
}
