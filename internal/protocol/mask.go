package protocol

import (
	"crypto/rand"
	"fmt"
	"io"
)

// MaskKey is the 4-byte key a client XORs over every outbound payload.
type MaskKey [MaskKeySize]byte

// NewMaskKey reads a fresh key from r. A nil r uses crypto/rand.
func NewMaskKey(r io.Reader) (MaskKey, error) {
	if r == nil {
		r = rand.Reader
	}
	var key MaskKey
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return key, fmt.Errorf("failed to generate mask key: %w", err)
	}
	return key, nil
}

// Mask XORs buf in place with key[i%4]. Applying it twice restores buf.
func Mask(buf []byte, key MaskKey) {
	for i := range buf {
		buf[i] ^= key[i%MaskKeySize]
	}
}
