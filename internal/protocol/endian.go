package protocol

import (
	"encoding/binary"
	"math/bits"
)

var hostBigEndian = probeBigEndian()

func probeBigEndian() bool {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 0x0102)
	return b[0] == 0x01
}

// HostIsBigEndian reports whether the running platform stores integers
// most significant byte first.
func HostIsBigEndian() bool {
	return hostBigEndian
}

// Unsigned is the set of fixed-width integers carried in extended length fields.
type Unsigned interface {
	uint16 | uint32 | uint64
}

// NetToHost converts x from network (big-endian) to host byte order.
func NetToHost[T Unsigned](x T) T {
	if hostBigEndian {
		return x
	}
	return swap(x)
}

// HostToNet converts x from host to network (big-endian) byte order.
func HostToNet[T Unsigned](x T) T {
	return NetToHost(x)
}

func swap[T Unsigned](x T) T {
	switch v := any(x).(type) {
	case uint16:
		return T(bits.ReverseBytes16(v))
	case uint32:
		return T(bits.ReverseBytes32(v))
	case uint64:
		return T(bits.ReverseBytes64(v))
	}
	return x
}

// putExtendedLength stores n into dst in network order. dst must be 2 or 8 bytes.
func putExtendedLength(dst []byte, n uint64) {
	switch len(dst) {
	case 2:
		binary.NativeEndian.PutUint16(dst, HostToNet(uint16(n)))
	case 8:
		binary.NativeEndian.PutUint64(dst, HostToNet(n))
	}
}

// readExtendedLength loads a network-order length from src (2 or 8 bytes).
func readExtendedLength(src []byte) uint64 {
	switch len(src) {
	case 2:
		return uint64(NetToHost(binary.NativeEndian.Uint16(src)))
	case 8:
		return NetToHost(binary.NativeEndian.Uint64(src))
	}
	return 0
}
