package client

import (
	"errors"
	"fmt"

	"github.com/ghack/client/internal/protocol"
)

// ErrVersionMismatch reports that the server's protocol version differs
// from ours. Fatal to the handshake; no negotiation is attempted.
var ErrVersionMismatch = errors.New("protocol version mismatch")

// LoginError reports a rejected login, carrying the server's reason code.
type LoginError struct {
	Reason protocol.LoginFailReason
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %s", e.Reason)
}
