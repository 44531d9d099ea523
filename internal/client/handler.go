package client

import "github.com/muurk/wsclient/internal/protocol"

// Message is one received frame as seen by a Handler.
//
// Data aliases the receive buffer and is only valid during the OnRecv call.
// Copy it to keep it.
type Message struct {
	Type protocol.FrameType
	Data []byte
}

// Handler receives connection events. Both methods run on the connection's
// background goroutine, one call at a time.
type Handler interface {
	OnConnect(result ConnectResult)
	OnRecv(msg Message, fin bool)
}

// DisconnectHandler is implemented by handlers that want to know when an
// established connection ends. err is nil when the peer closed cleanly.
type DisconnectHandler interface {
	OnDisconnect(err error)
}

// Tap observes every frame that is sent or received.
type Tap interface {
	Frame(direction string, op protocol.FrameType, fin bool, payload []byte)
}

// Directions passed to Tap.Frame
const (
	DirectionSend = "send"
	DirectionRecv = "recv"
)

// HandlerFuncs adapts plain functions to Handler and DisconnectHandler.
// Nil fields are skipped.
type HandlerFuncs struct {
	Connect    func(result ConnectResult)
	Recv       func(msg Message, fin bool)
	Disconnect func(err error)
}

func (h HandlerFuncs) OnConnect(result ConnectResult) {
	if h.Connect != nil {
		h.Connect(result)
	}
}

func (h HandlerFuncs) OnRecv(msg Message, fin bool) {
	if h.Recv != nil {
		h.Recv(msg, fin)
	}
}

func (h HandlerFuncs) OnDisconnect(err error) {
	if h.Disconnect != nil {
		h.Disconnect(err)
	}
}

// Taps fans frames out to several taps in order.
type Taps []Tap

func (ts Taps) Frame(direction string, op protocol.FrameType, fin bool, payload []byte) {
	for _, t := range ts {
		if t != nil {
			t.Frame(direction, op, fin, payload)
		}
	}
}
