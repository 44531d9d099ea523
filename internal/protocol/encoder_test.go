package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// fixedKeys returns a reader that yields key over and over.
func fixedKeys(key MaskKey) *bytes.Reader {
	return bytes.NewReader(bytes.Repeat(key[:], 1024))
}

func TestEncode_HelloText(t *testing.T) {
	key := MaskKey{0x11, 0x22, 0x33, 0x44}
	enc := NewEncoder(fixedKeys(key))

	buf, err := enc.Encode(Text, []byte("Hello!"))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(buf) != 12 {
		t.Fatalf("len = %d, want 12", len(buf))
	}
	if buf[0] != 0x81 {
		t.Errorf("byte 0 = 0x%02x, want 0x81 (FIN + text)", buf[0])
	}
	if buf[1]&0x80 == 0 {
		t.Error("mask bit should be set")
	}
	if got := buf[1] & 0x7F; got != 6 {
		t.Errorf("length field = %d, want 6", got)
	}
	if !bytes.Equal(buf[2:6], key[:]) {
		t.Errorf("mask key = %x, want %x", buf[2:6], key)
	}

	payload := append([]byte(nil), buf[6:]...)
	Mask(payload, key)
	if string(payload) != "Hello!" {
		t.Errorf("unmasked payload = %q, want %q", payload, "Hello!")
	}
}

func TestEncode_LengthIndicator(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		indicator byte
		extSize   int
	}{
		{"empty", 0, 0, 0},
		{"one byte", 1, 1, 0},
		{"direct maximum", 125, 125, 0},
		{"16-bit minimum", 126, 126, 2},
		{"16-bit maximum", 65535, 126, 2},
		{"64-bit minimum", 65536, 127, 8},
		{"64-bit", 70000, 127, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := EncodeFrame(Binary, make([]byte, tt.n))
			if err != nil {
				t.Fatalf("EncodeFrame() error = %v", err)
			}
			if got := buf[1] & 0x7F; got != tt.indicator {
				t.Errorf("indicator = %d, want %d", got, tt.indicator)
			}
			switch tt.extSize {
			case 2:
				if got := binary.BigEndian.Uint16(buf[2:4]); int(got) != tt.n {
					t.Errorf("16-bit extension = %d, want %d", got, tt.n)
				}
			case 8:
				if got := binary.BigEndian.Uint64(buf[2:10]); int(got) != tt.n {
					t.Errorf("64-bit extension = %d, want %d", got, tt.n)
				}
			}
			want := 2 + tt.extSize + MaskKeySize + tt.n
			if len(buf) != want {
				t.Errorf("len = %d, want %d", len(buf), want)
			}
			if HeaderLen(tt.n) != 2+tt.extSize+MaskKeySize {
				t.Errorf("HeaderLen(%d) = %d", tt.n, HeaderLen(tt.n))
			}
		})
	}
}

func TestEncode_AlwaysMaskedAndFinal(t *testing.T) {
	for op := FrameType(0); op <= 0xF; op++ {
		buf, err := EncodeFrame(op, nil)
		if err != nil {
			t.Fatalf("EncodeFrame(%s) error = %v", op, err)
		}
		if buf[0]&0x80 == 0 {
			t.Errorf("%s: FIN not set", op)
		}
		if FrameType(buf[0]&0x0F) != op {
			t.Errorf("%s: opcode = 0x%x", op, buf[0]&0x0F)
		}
		if buf[0]&0x70 != 0 {
			t.Errorf("%s: reserved bits set", op)
		}
		if buf[1]&0x80 == 0 {
			t.Errorf("%s: mask bit not set", op)
		}
	}
}

func TestEncode_DoesNotModifyPayload(t *testing.T) {
	payload := []byte("do not touch")
	orig := append([]byte(nil), payload...)
	if _, err := EncodeFrame(Text, payload); err != nil {
		t.Fatalf("EncodeFrame() error = %v", err)
	}
	if !bytes.Equal(payload, orig) {
		t.Errorf("payload modified: %q", payload)
	}
}

func TestEncode_RandomSourceError(t *testing.T) {
	enc := NewEncoder(errReader{})
	if _, err := enc.Encode(Text, []byte("x")); !errors.Is(err, errBroken) {
		t.Errorf("Encode() error = %v, want %v", err, errBroken)
	}
}

func TestEncodedLen_Overflow(t *testing.T) {
	if _, err := EncodedLen(-1); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("EncodedLen(-1) error = %v, want %v", err, ErrFrameTooLarge)
	}
	if n, err := EncodedLen(6); err != nil || n != 12 {
		t.Errorf("EncodedLen(6) = %d, %v; want 12, nil", n, err)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	lengths := []int{0, 1, 125, 126, 65535, 65536, 70000}

	for _, n := range lengths {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 31)
		}
		for op := FrameType(0); op <= 0xF; op++ {
			buf, err := EncodeFrame(op, payload)
			if err != nil {
				t.Fatalf("EncodeFrame(%s, %d) error = %v", op, n, err)
			}

			r := NewReassembler(0)
			var got []*Frame
			frames, err := r.Feed(buf, func(f *Frame) {
				cp := *f
				cp.Payload = append([]byte(nil), f.Payload...)
				got = append(got, &cp)
			})
			if err != nil {
				t.Fatalf("Feed() error = %v", err)
			}
			if frames != 1 || len(got) != 1 {
				t.Fatalf("%s/%d: frames = %d, want 1", op, n, frames)
			}
			f := got[0]
			if f.Opcode != op {
				t.Errorf("%s/%d: opcode = %s", op, n, f.Opcode)
			}
			if !f.FIN {
				t.Errorf("%s/%d: FIN = false", op, n)
			}
			if f.Length != uint64(n) {
				t.Errorf("%s/%d: length = %d", op, n, f.Length)
			}
			if !bytes.Equal(f.Payload, payload) {
				t.Errorf("%s/%d: payload mismatch", op, n)
			}
			if r.Buffered() != 0 {
				t.Errorf("%s/%d: %d bytes left buffered", op, n, r.Buffered())
			}
		}
	}
}

func BenchmarkEncodeFrame(b *testing.B) {
	payload := make([]byte, 1024)
	for i := 0; i < b.N; i++ {
		_, _ = EncodeFrame(Binary, payload)
	}
}
