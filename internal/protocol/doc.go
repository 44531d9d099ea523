// Package protocol implements the RFC 6455 frame codec used by the client.
//
// This package turns application messages into masked client-to-server frames
// and turns an arbitrarily chunked inbound byte stream back into frames. It
// has no knowledge of sockets or connection state.
//
// # Frame Format
//
//	byte 0: FIN(1) RSV1-3(3) OPCODE(4)
//	byte 1: MASK(1) LEN(7)
//	LEN 0..125  literal payload length
//	LEN 126     16-bit big-endian length follows
//	LEN 127     64-bit big-endian length follows
//	4-byte mask key if MASK is set, then the payload
//
// Opcodes 0x8-0xF are control frames. Header fields are extracted with
// explicit shifts and masks, so decoding does not depend on host byte order.
//
// # Encoding
//
// Every frame built by the Encoder is final (FIN=1) and masked with a fresh
// key from crypto/rand:
//
//	buf, err := protocol.EncodeFrame(protocol.Text, []byte("Hello!"))
//	if err != nil {
//	    return err
//	}
//	// len(buf) == 12: 2 header + 4 mask + 6 payload
//
// # Decoding
//
// A Reassembler retains incomplete bytes between chunks and emits every
// complete frame it can parse:
//
//	r := protocol.NewReassembler(1 << 20)
//	_, err := r.Feed(chunk, func(f *protocol.Frame) {
//	    fmt.Println(f.Opcode, f.FIN, string(f.Payload))
//	})
//
// Payloads passed to the callback alias internal storage. Copy them if they
// must outlive the callback.
//
// Continuation frames are not reassembled into messages; each frame is
// surfaced with its FIN flag and the caller joins fragments if needed.
package protocol
