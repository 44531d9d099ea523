package protocol

import (
	"errors"
	"fmt"
)

// ErrBufferOverflow is returned when a peer makes the reassembler retain
// more bytes than its configured cap.
var ErrBufferOverflow = errors.New("reassembly buffer limit exceeded")

// releaseThreshold is the idle capacity above which the buffer is dropped
// instead of kept for reuse.
const releaseThreshold = 64 << 10

// Reassembler turns an arbitrarily chunked inbound byte stream into frames.
// It is not safe for concurrent use.
type Reassembler struct {
	buf         []byte
	maxBuffered int
}

// NewReassembler creates a reassembler. maxBuffered caps the bytes retained
// between calls to Feed; zero means no cap.
func NewReassembler(maxBuffered int) *Reassembler {
	return &Reassembler{maxBuffered: maxBuffered}
}

// Buffered returns the number of bytes held for the next Feed.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Reset drops any retained bytes.
func (r *Reassembler) Reset() {
	r.buf = nil
}

// Feed appends chunk to the retained bytes and calls emit once for every
// complete frame, in stream order. The frame's Payload aliases the internal
// buffer and is only valid until emit returns. Incomplete trailing bytes are
// kept verbatim for the next call. Feed returns the number of frames emitted.
func (r *Reassembler) Feed(chunk []byte, emit func(*Frame)) (int, error) {
	r.buf = append(r.buf, chunk...)

	pos := 0
	frames := 0
	var need uint64
	for {
		frame, consumed, required := decodeFrame(r.buf[pos:])
		if frame == nil {
			need = required
			break
		}
		frames++
		if emit != nil {
			emit(frame)
		}
		pos += consumed
	}

	r.compact(pos)

	if r.maxBuffered > 0 {
		if len(r.buf) > r.maxBuffered {
			return frames, fmt.Errorf("%w: %d bytes buffered, limit %d", ErrBufferOverflow, len(r.buf), r.maxBuffered)
		}
		if need > uint64(r.maxBuffered) {
			return frames, fmt.Errorf("%w: frame needs %d bytes, limit %d", ErrBufferOverflow, need, r.maxBuffered)
		}
	}
	return frames, nil
}

// compact moves the unconsumed tail to the front of the buffer.
func (r *Reassembler) compact(pos int) {
	if pos == 0 {
		return
	}
	n := copy(r.buf, r.buf[pos:])
	if n == 0 && cap(r.buf) > releaseThreshold {
		r.buf = nil
		return
	}
	r.buf = r.buf[:n]
}

// decodeFrame parses one frame from the front of data. When data does not
// hold a complete frame it returns a nil frame and, if the header was
// readable, the total number of bytes the frame needs. Nothing in data is
// modified unless a complete frame is returned.
func decodeFrame(data []byte) (*Frame, int, uint64) {
	if len(data) < 2 {
		return nil, 0, 0
	}
	h := parseHeader(data[0], data[1])
	offset := 2

	length := uint64(h.indicator)
	if ext := extendedLengthSize(h.indicator); ext > 0 {
		if len(data) < offset+ext {
			return nil, 0, 0
		}
		length = readExtendedLength(data[offset : offset+ext])
		offset += ext
	}

	var key MaskKey
	if h.masked {
		if len(data) < offset+MaskKeySize {
			return nil, 0, 0
		}
		copy(key[:], data[offset:offset+MaskKeySize])
		offset += MaskKeySize
	}

	available := uint64(len(data) - offset)
	if available < length {
		return nil, 0, satAdd(uint64(offset), length)
	}

	end := offset + int(length)
	payload := data[offset:end:end]
	if h.masked {
		Mask(payload, key)
	}

	return &Frame{
		FIN:     h.fin,
		RSV1:    h.rsv1,
		RSV2:    h.rsv2,
		RSV3:    h.rsv3,
		Opcode:  h.opcode,
		Masked:  h.masked,
		Length:  length,
		MaskKey: key,
		Payload: payload,
	}, end, 0
}

func satAdd(a, b uint64) uint64 {
	if a > ^uint64(0)-b {
		return ^uint64(0)
	}
	return a + b
}
