package client

import "fmt"

// State is the session's protocol phase. Transitions run strictly forward;
// Disconnected is terminal and reachable from any state.
type State int32

const (
	StateConnecting State = iota // CONNECT sent, awaiting server reply
	StateLoggingIn               // versions matched, awaiting LOGINRESULT
	StateInGame                  // logged in, gameplay messages flowing
	StateDisconnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateLoggingIn:
		return "LoggingIn"
	case StateInGame:
		return "InGame"
	case StateDisconnected:
		return "Disconnected"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(s))
	}
}
