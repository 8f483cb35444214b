// Package script implements the two Bitcoin Script length encodings the
// address layer needs: compact-size integers and push-data prefixes.
package script

import (
	"encoding/binary"

	"github.com/neverDefined/go-btcaddr/addrerr"
)

// Opcodes referenced by witness scriptPubKeys and push-data prefixes.
const (
	OP_0         byte = 0x00
	OP_PUSHDATA1 byte = 0x4c
	OP_PUSHDATA2 byte = 0x4d
	OP_1         byte = 0x51
	OP_16        byte = 0x60
)

// Encoding limits.
const (
	// MaxVarintLength is the largest length EncodeVarint supports. Only the
	// one-byte and 0xfd forms are implemented.
	MaxVarintLength = 0xffff

	// MaxPushDataLength is the largest element a single push may carry
	// (MAX_SCRIPT_ELEMENT_SIZE).
	MaxPushDataLength = 520

	// MaxDirectPushLength is the longest push encoded as a bare length byte.
	MaxDirectPushLength = 76
)

// EncodeVarint returns length as a compact-size integer: one byte below
// 0xfd, otherwise 0xfd followed by a little-endian uint16.
func EncodeVarint(length int) ([]byte, error) {
	switch {
	case length < 0:
		return nil, addrerr.New(addrerr.UnsupportedLength, "script.EncodeVarint",
			"negative length %d", length)
	case length < 0xfd:
		return []byte{byte(length)}, nil
	case length <= MaxVarintLength:
		buf := make([]byte, 3)
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(length))
		return buf, nil
	default:
		return nil, addrerr.New(addrerr.UnsupportedLength, "script.EncodeVarint",
			"length %d exceeds 0x%x", length, MaxVarintLength)
	}
}

// PushDataPrefix returns the bytes that announce a push of n bytes.
func PushDataPrefix(n int) ([]byte, error) {
	switch {
	case n < 0:
		return nil, addrerr.New(addrerr.UnsupportedLength, "script.PushDataPrefix",
			"negative length %d", n)
	case n <= MaxDirectPushLength:
		return []byte{byte(n)}, nil
	case n <= 0xff:
		return []byte{OP_PUSHDATA1, byte(n)}, nil
	case n <= MaxPushDataLength:
		buf := make([]byte, 3)
		buf[0] = OP_PUSHDATA2
		binary.LittleEndian.PutUint16(buf[1:], uint16(n))
		return buf, nil
	default:
		return nil, addrerr.New(addrerr.UnsupportedLength, "script.PushDataPrefix",
			"length %d exceeds %d", n, MaxPushDataLength)
	}
}

// EncodePushData returns data prefixed with its push-data length encoding.
func EncodePushData(data []byte) ([]byte, error) {
	prefix, err := PushDataPrefix(len(data))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(prefix)+len(data))
	out = append(out, prefix...)
	return append(out, data...), nil
}

// SmallIntOpcode returns the opcode pushing the small integer v (0..16).
func SmallIntOpcode(v byte) (byte, bool) {
	switch {
	case v == 0:
		return OP_0, true
	case v <= 16:
		return OP_1 - 1 + v, true
	default:
		return 0, false
	}
}

// SmallIntValue is the inverse of SmallIntOpcode.
func SmallIntValue(op byte) (byte, bool) {
	switch {
	case op == OP_0:
		return 0, true
	case op >= OP_1 && op <= OP_16:
		return op - (OP_1 - 1), true
	default:
		return 0, false
	}
}
