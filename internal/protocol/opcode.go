package protocol

import "fmt"

// FrameType is the 4-bit WebSocket opcode.
type FrameType uint8

// Non-control frame types
const (
	Continuation        FrameType = 0x0
	Text                FrameType = 0x1
	Binary              FrameType = 0x2
	NonControlReserved1 FrameType = 0x3
	NonControlReserved2 FrameType = 0x4
	NonControlReserved3 FrameType = 0x5
	NonControlReserved4 FrameType = 0x6
	NonControlReserved5 FrameType = 0x7
)

// Control frame types
const (
	Close            FrameType = 0x8
	Ping             FrameType = 0x9
	Pong             FrameType = 0xA
	ControlReserved1 FrameType = 0xB
	ControlReserved2 FrameType = 0xC
	ControlReserved3 FrameType = 0xD
	ControlReserved4 FrameType = 0xE
	ControlReserved5 FrameType = 0xF
)

// Header bit masks
const (
	finBit     = 0x80
	rsv1Bit    = 0x40
	rsv2Bit    = 0x20
	rsv3Bit    = 0x10
	opcodeBits = 0x0F
	maskBit    = 0x80
	lenBits    = 0x7F
	controlBit = 0x08
)

// IsControl reports whether t is a control frame type (high opcode bit set).
func (t FrameType) IsControl() bool {
	return t&controlBit != 0
}

// IsReserved reports whether t is one of the ten reserved opcodes.
func (t FrameType) IsReserved() bool {
	switch t & opcodeBits {
	case Continuation, Text, Binary, Close, Ping, Pong:
		return false
	default:
		return true
	}
}

// String returns a human-readable opcode name
func (t FrameType) String() string {
	switch t {
	case Continuation:
		return "continuation"
	case Text:
		return "text"
	case Binary:
		return "binary"
	case Close:
		return "close"
	case Ping:
		return "ping"
	case Pong:
		return "pong"
	default:
		return fmt.Sprintf("reserved(0x%X)", uint8(t))
	}
}

// ParseFrameType maps a name accepted by String back to its opcode.
func ParseFrameType(name string) (FrameType, error) {
	switch name {
	case "continuation":
		return Continuation, nil
	case "text":
		return Text, nil
	case "binary":
		return Binary, nil
	case "close":
		return Close, nil
	case "ping":
		return Ping, nil
	case "pong":
		return Pong, nil
	}
	return 0, fmt.Errorf("unknown frame type %q", name)
}
