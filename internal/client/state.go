package client

import "fmt"

// State is the connection lifecycle state.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ConnectResult is the outcome reported to Handler.OnConnect.
type ConnectResult int

const (
	// Success means the server answered the upgrade with 101.
	Success ConnectResult = iota
	// Timeout means the server could not be reached before the connect deadline.
	Timeout
	// Reject means the handshake completed with another status, or the
	// connection failed for a reason other than a timeout.
	Reject
)

func (r ConnectResult) String() string {
	switch r {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("ConnectResult(%d)", int(r))
	}
}
