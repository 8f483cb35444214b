// Package base58check implements Base58Check, the checksummed Base58
// text encoding used by legacy addresses and WIF keys.
//
// Two decoders are provided. Decode is a raw Base58 decode that does not
// look at the checksum; the trailing four bytes are returned with the
// payload. DecodeCheck verifies and strips the checksum.
package base58check

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/digest"
)

// Alphabet is the Bitcoin Base58 alphabet.
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ChecksumSize is the length of the appended double-SHA256 checksum.
const ChecksumSize = 4

// Checksum returns the first four bytes of Hash256(payload).
func Checksum(payload []byte) []byte {
	return digest.Hash256(payload)[:ChecksumSize]
}

// Encode returns the Base58 encoding of payload followed by its checksum.
func Encode(payload []byte) string {
	data := make([]byte, 0, len(payload)+ChecksumSize)
	data = append(data, payload...)
	data = append(data, Checksum(payload)...)
	return base58.Encode(data)
}

// Decode returns the raw Base58 decoding of s. The checksum is NOT verified.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, addrerr.New(addrerr.InvalidEncoding, "base58check.Decode", "empty string")
	}
	// base58.Decode reports bad characters as an empty result, which is
	// indistinguishable from valid input, so the alphabet is checked here.
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(Alphabet, s[i]) < 0 {
			return nil, addrerr.WithDetails(
				addrerr.New(addrerr.InvalidEncoding, "base58check.Decode", "invalid base58 character %q", s[i]),
				map[string]string{"position": strconv.Itoa(i)},
			)
		}
	}
	return base58.Decode(s), nil
}

// DecodeCheck decodes s and verifies its trailing checksum, returning the
// payload without the checksum.
func DecodeCheck(s string) ([]byte, error) {
	decoded, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(decoded) <= ChecksumSize {
		return nil, addrerr.New(addrerr.InvalidEncoding, "base58check.DecodeCheck",
			"decoded length %d too short", len(decoded))
	}

	payload := decoded[:len(decoded)-ChecksumSize]
	if !bytes.Equal(decoded[len(decoded)-ChecksumSize:], Checksum(payload)) {
		return nil, addrerr.New(addrerr.InvalidChecksum, "base58check.DecodeCheck", "checksum mismatch")
	}
	return payload, nil
}

// CheckEncode encodes a version byte followed by payload.
func CheckEncode(version byte, payload []byte) string {
	data := make([]byte, 0, 1+len(payload))
	data = append(data, version)
	data = append(data, payload...)
	return Encode(data)
}

// CheckDecode is the inverse of CheckEncode.
func CheckDecode(s string) (version byte, payload []byte, err error) {
	decoded, err := DecodeCheck(s)
	if err != nil {
		return 0, nil, err
	}
	return decoded[0], decoded[1:], nil
}
