package protocol

import "fmt"

// Payload length indicator boundaries
const (
	// MaxDirectLength is the largest payload length carried in the 7-bit field.
	MaxDirectLength = 125

	// Length16 signals a 16-bit big-endian extended length.
	Length16 = 126

	// Length64 signals a 64-bit big-endian extended length.
	Length64 = 127

	// MaskKeySize is the size of the masking key in bytes.
	MaskKeySize = 4

	// MaxHeaderSize is the largest header: 2 fixed + 8 extended + 4 mask.
	MaxHeaderSize = 2 + 8 + MaskKeySize
)

// Frame represents a WebSocket frame
type Frame struct {
	FIN     bool
	RSV1    bool
	RSV2    bool
	RSV3    bool
	Opcode  FrameType
	Masked  bool
	Length  uint64
	MaskKey MaskKey
	Payload []byte // Always unmasked once decoded
}

// IsControl reports whether the frame carries a control opcode.
func (f *Frame) IsControl() bool {
	return f.Opcode.IsControl()
}

// String returns a debug representation of the frame
func (f *Frame) String() string {
	return fmt.Sprintf("Frame{FIN=%v, Opcode=%s, Masked=%v, Length=%d}",
		f.FIN, f.Opcode, f.Masked, f.Length)
}

// header holds the fields carried in the two fixed header bytes.
type header struct {
	fin       bool
	rsv1      bool
	rsv2      bool
	rsv3      bool
	opcode    FrameType
	masked    bool
	indicator byte
}

// parseHeader extracts the fixed header fields with explicit shifts and masks,
// so the result does not depend on host byte order.
func parseHeader(b0, b1 byte) header {
	return header{
		fin:       b0&finBit != 0,
		rsv1:      b0&rsv1Bit != 0,
		rsv2:      b0&rsv2Bit != 0,
		rsv3:      b0&rsv3Bit != 0,
		opcode:    FrameType(b0 & opcodeBits),
		masked:    b1&maskBit != 0,
		indicator: b1 & lenBits,
	}
}

// extendedLengthSize returns how many extended length bytes follow an indicator.
func extendedLengthSize(indicator byte) int {
	switch indicator {
	case Length16:
		return 2
	case Length64:
		return 8
	default:
		return 0
	}
}

// lengthIndicator selects the 7-bit length field for a payload of n bytes.
func lengthIndicator(n uint64) byte {
	switch {
	case n <= MaxDirectLength:
		return byte(n)
	case n <= 0xFFFF:
		return Length16
	default:
		return Length64
	}
}
