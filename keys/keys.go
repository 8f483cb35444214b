// Package keys derives compressed public keys and WIF strings from
// secp256k1 private scalars.
//
// The curve arithmetic is behind the Curve interface so callers can pick a
// backend; Btcec is the default.
package keys

import (
	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/base58check"
	"github.com/neverDefined/go-btcaddr/network"
)

// Public key prefixes.
const (
	PubKeyEvenPrefix byte = 0x02
	PubKeyOddPrefix  byte = 0x03

	CompressedPubKeySize = 33

	// compressMagic follows the scalar in a WIF for a compressed key.
	compressMagic byte = 0x01
)

// CompressedPublicKey returns the 33-byte compressed public key for scalar
// computed with curve c.
func CompressedPublicKey(c Curve, scalar []byte) ([]byte, error) {
	p, err := c.ScalarBaseMult(scalar)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, CompressedPubKeySize)
	if p.Y[31]&1 == 0 {
		out = append(out, PubKeyEvenPrefix)
	} else {
		out = append(out, PubKeyOddPrefix)
	}
	return append(out, p.X[:]...), nil
}

// PrivateToCompressedPublic is CompressedPublicKey using the Btcec curve.
func PrivateToCompressedPublic(scalar []byte) ([]byte, error) {
	return CompressedPublicKey(Btcec, scalar)
}

// PrivateToWIF encodes scalar in Wallet Import Format for net. The
// compressed flag records whether the key's addresses use the compressed
// public key.
func PrivateToWIF(scalar []byte, compressed bool, net network.Network) (string, error) {
	const op = "keys.PrivateToWIF"

	if len(scalar) != ScalarSize {
		return "", addrerr.New(addrerr.InvalidScalar, op, "scalar must be %d bytes, got %d", ScalarSize, len(scalar))
	}
	p, err := net.Params()
	if err != nil {
		return "", err
	}

	extended := make([]byte, 0, 1+ScalarSize+1)
	extended = append(extended, p.PrivateKeyID)
	extended = append(extended, scalar...)
	if compressed {
		extended = append(extended, compressMagic)
	}
	return base58check.Encode(extended), nil
}

// WIF is a decoded Wallet Import Format key. Testnet and regtest share a
// version byte, so both decode as Testnet.
type WIF struct {
	Scalar     []byte
	Compressed bool
	Network    network.Network
}

// DecodeWIF parses and verifies a WIF string.
func DecodeWIF(s string) (*WIF, error) {
	const op = "keys.DecodeWIF"

	payload, err := base58check.DecodeCheck(s)
	if err != nil {
		return nil, err
	}

	var compressed bool
	switch len(payload) {
	case 1 + ScalarSize:
	case 1 + ScalarSize + 1:
		if payload[len(payload)-1] != compressMagic {
			return nil, addrerr.New(addrerr.InvalidEncoding, op, "bad compression flag 0x%02x", payload[len(payload)-1])
		}
		compressed = true
	default:
		return nil, addrerr.New(addrerr.InvalidEncoding, op, "payload length %d", len(payload))
	}

	var net network.Network
	switch payload[0] {
	case 0x80:
		net = network.Mainnet
	case 0xef:
		net = network.Testnet
	default:
		return nil, addrerr.New(addrerr.UnknownNetwork, op, "unknown version byte 0x%02x", payload[0])
	}

	scalar := make([]byte, ScalarSize)
	copy(scalar, payload[1:1+ScalarSize])
	return &WIF{Scalar: scalar, Compressed: compressed, Network: net}, nil
}
