package session

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/muurk/wsclient/internal/protocol"
)

// Action is what a line of user input asks for
type Action int

const (
	ActionNone Action = iota // Blank line
	ActionSend               // Send Op with Payload
	ActionClose              // Start the closing handshake
	ActionFlush              // Retry a pending partial write
	ActionQuit               // Leave the session
)

// Input is a parsed line of user input
type Input struct {
	Action  Action
	Op      protocol.FrameType
	Payload []byte
}

// ParseInput interprets one typed line. Plain text becomes a Text frame, or
// Binary when binary is set. Lines starting with "/" are commands.
func ParseInput(line string, binary bool) (Input, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Input{Action: ActionNone}, nil
	}

	if !strings.HasPrefix(line, "/") {
		op := protocol.Text
		if binary {
			op = protocol.Binary
		}
		return Input{Action: ActionSend, Op: op, Payload: []byte(line)}, nil
	}

	cmd, arg, _ := strings.Cut(line[1:], " ")
	switch cmd {
	case "quit", "q":
		return Input{Action: ActionQuit}, nil
	case "close":
		return Input{Action: ActionClose}, nil
	case "flush":
		return Input{Action: ActionFlush}, nil
	case "ping":
		return Input{Action: ActionSend, Op: protocol.Ping, Payload: []byte(arg)}, nil
	case "pong":
		return Input{Action: ActionSend, Op: protocol.Pong, Payload: []byte(arg)}, nil
	case "text":
		return Input{Action: ActionSend, Op: protocol.Text, Payload: []byte(arg)}, nil
	case "binary":
		data, err := hex.DecodeString(strings.ReplaceAll(arg, " ", ""))
		if err != nil {
			return Input{}, fmt.Errorf("invalid hex: %w", err)
		}
		return Input{Action: ActionSend, Op: protocol.Binary, Payload: data}, nil
	default:
		return Input{}, fmt.Errorf("unknown command /%s", cmd)
	}
}
