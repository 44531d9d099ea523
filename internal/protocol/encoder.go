package protocol

import (
	"errors"
	"io"
	"math"
)

// ErrFrameTooLarge is returned when an encoded frame cannot be allocated.
var ErrFrameTooLarge = errors.New("frame too large to encode")

// Encoder builds masked client-to-server frames.
type Encoder struct {
	rand io.Reader
}

// NewEncoder returns an encoder that draws mask keys from r.
// A nil r uses crypto/rand.
func NewEncoder(r io.Reader) *Encoder {
	return &Encoder{rand: r}
}

// HeaderLen returns the header size (including mask key) for a masked payload of n bytes.
func HeaderLen(n int) int {
	return 2 + extendedLengthSize(lengthIndicator(uint64(n))) + MaskKeySize
}

// EncodedLen returns the total on-wire size of a masked frame carrying n payload bytes.
func EncodedLen(n int) (int, error) {
	h := HeaderLen(n)
	if n < 0 || n > math.MaxInt-h {
		return 0, ErrFrameTooLarge
	}
	return h + n, nil
}

// Encode returns a single final, masked frame of type op carrying payload.
// The payload slice is not modified. A fresh mask key is generated per call.
func (e *Encoder) Encode(op FrameType, payload []byte) ([]byte, error) {
	total, err := EncodedLen(len(payload))
	if err != nil {
		return nil, err
	}

	key, err := NewMaskKey(e.rand)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, total)
	n := uint64(len(payload))
	indicator := lengthIndicator(n)

	// FIN is always set: outbound fragmentation is not supported.
	buf[0] = finBit | byte(op&opcodeBits)
	buf[1] = maskBit | indicator
	offset := 2

	if ext := extendedLengthSize(indicator); ext > 0 {
		putExtendedLength(buf[offset:offset+ext], n)
		offset += ext
	}

	copy(buf[offset:], key[:])
	offset += MaskKeySize

	copy(buf[offset:], payload)
	Mask(buf[offset:], key)

	return buf, nil
}

var defaultEncoder = NewEncoder(nil)

// EncodeFrame encodes payload with a crypto/rand mask key.
func EncodeFrame(op FrameType, payload []byte) ([]byte, error) {
	return defaultEncoder.Encode(op, payload)
}
