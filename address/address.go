package address

import (
	"strconv"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/base58check"
	"github.com/neverDefined/go-btcaddr/bech32"
	"github.com/neverDefined/go-btcaddr/digest"
	"github.com/neverDefined/go-btcaddr/network"
	"github.com/neverDefined/go-btcaddr/script"
)

// Type is the kind of output an address pays to.
type Type uint8

// Address types.
const (
	P2PKHType Type = iota + 1
	P2SHType
	P2WPKHType
	P2WSHType
	P2SHP2WPKHType
	WitnessUnknownType
)

func (t Type) String() string {
	switch t {
	case P2PKHType:
		return "p2pkh"
	case P2SHType:
		return "p2sh"
	case P2WPKHType:
		return "p2wpkh"
	case P2WSHType:
		return "p2wsh"
	case P2SHP2WPKHType:
		return "p2sh-p2wpkh"
	case WitnessUnknownType:
		return "witness-unknown"
	default:
		return "unknown(" + strconv.Itoa(int(t)) + ")"
	}
}

// Format is the text encoding of an address.
type Format uint8

// Address formats.
const (
	FormatBase58Check Format = iota + 1
	FormatBech32
	FormatBech32m
)

func (f Format) String() string {
	switch f {
	case FormatBase58Check:
		return "base58check"
	case FormatBech32:
		return "bech32"
	case FormatBech32m:
		return "bech32m"
	default:
		return "unknown"
	}
}

// Address is an encoded address together with what it pays to.
type Address struct {
	Type    Type
	Network network.Network
	Encoded string

	witnessVersion byte
}

func (a Address) String() string {
	return a.Encoded
}

// Format reports how Encoded is written.
func (a Address) Format() Format {
	switch a.Type {
	case P2PKHType, P2SHType, P2SHP2WPKHType:
		return FormatBase58Check
	}
	if bech32.EncodingFor(a.witnessVersion) == bech32.Bech32m {
		return FormatBech32m
	}
	return FormatBech32
}

// WitnessVersion returns the witness version of a segwit address. It is
// zero for legacy addresses.
func (a Address) WitnessVersion() byte {
	return a.witnessVersion
}

func base58Address(t Type, net network.Network, hash []byte) (Address, error) {
	p, err := net.Params()
	if err != nil {
		return Address{}, err
	}

	version := p.PubKeyHashAddrID
	if t != P2PKHType {
		version = p.ScriptHashAddrID
	}
	return Address{
		Type:    t,
		Network: net,
		Encoded: base58check.CheckEncode(version, hash),
	}, nil
}

// P2PKH returns the pay-to-public-key-hash address for pubkey.
func P2PKH(pubkey []byte, net network.Network) (Address, error) {
	return base58Address(P2PKHType, net, digest.Hash160(pubkey))
}

// P2SH returns the pay-to-script-hash address for redeemScript.
func P2SH(redeemScript []byte, net network.Network) (Address, error) {
	return base58Address(P2SHType, net, digest.Hash160(redeemScript))
}

// RedeemScriptP2WPKH returns the version 0 witness script OP_0 <20-byte
// Hash160(pubkey)> that P2SH-P2WPKH commits to.
func RedeemScriptP2WPKH(pubkey []byte) []byte {
	hash := digest.Hash160(pubkey)
	out := make([]byte, 0, 2+len(hash))
	out = append(out, script.OP_0, byte(len(hash)))
	return append(out, hash...)
}

// P2SHP2WPKH returns the nested segwit address for pubkey.
func P2SHP2WPKH(pubkey []byte, net network.Network) (Address, error) {
	return base58Address(P2SHP2WPKHType, net,
		digest.Hash160(RedeemScriptP2WPKH(pubkey)))
}

// WitnessScriptPubKey returns the consensus scriptPubKey for a witness
// program: the small-integer opcode for version followed by a push of
// program.
func WitnessScriptPubKey(version byte, program []byte) ([]byte, error) {
	const op = "address.WitnessScriptPubKey"

	opcode, ok := script.SmallIntOpcode(version)
	if !ok {
		return nil, addrerr.New(addrerr.InvalidEncoding, op, "witness version %d exceeds %d",
			version, bech32.MaxWitnessVersion)
	}
	if n := len(program); n < bech32.MinProgramLength || n > bech32.MaxProgramLength {
		return nil, addrerr.New(addrerr.InvalidProgramLength, op,
			"program length %d outside %d..%d", n, bech32.MinProgramLength, bech32.MaxProgramLength)
	}
	push, err := script.EncodePushData(program)
	if err != nil {
		return nil, err
	}
	return append([]byte{opcode}, push...), nil
}

// P2WPKH returns the native segwit address paying to Hash160(pubkey).
func P2WPKH(pubkey []byte, net network.Network) (Address, error) {
	spk, err := WitnessScriptPubKey(0, digest.Hash160(pubkey))
	if err != nil {
		return Address{}, err
	}
	return ScriptPubKeyToBech32(spk, net)
}

// P2WSH returns the native segwit address paying to Sha256(redeemScript).
func P2WSH(redeemScript []byte, net network.Network) (Address, error) {
	spk, err := WitnessScriptPubKey(0, digest.Sha256(redeemScript))
	if err != nil {
		return Address{}, err
	}
	return ScriptPubKeyToBech32(spk, net)
}

// ScriptPubKeyToBech32 encodes a witness scriptPubKey as a segwit address.
// spk must be a version opcode (OP_0 or OP_1..OP_16) followed by a single
// direct push of the program.
func ScriptPubKeyToBech32(spk []byte, net network.Network) (Address, error) {
	const op = "address.ScriptPubKeyToBech32"

	p, err := net.Params()
	if err != nil {
		return Address{}, err
	}
	if len(spk) < 2 {
		return Address{}, addrerr.New(addrerr.InvalidEncoding, op, "script of %d bytes is too short", len(spk))
	}
	version, ok := script.SmallIntValue(spk[0])
	if !ok {
		return Address{}, addrerr.New(addrerr.InvalidEncoding, op, "opcode 0x%02x is not a witness version", spk[0])
	}
	if int(spk[1]) != len(spk)-2 {
		return Address{}, addrerr.WithDetails(
			addrerr.New(addrerr.InvalidEncoding, op, "push length does not match script"),
			map[string]string{"push": strconv.Itoa(int(spk[1])), "remaining": strconv.Itoa(len(spk) - 2)},
		)
	}

	program := spk[2:]
	encoded, err := bech32.Encode(p.Bech32HRP, version, program)
	if err != nil {
		return Address{}, err
	}

	t := WitnessUnknownType
	if version == 0 {
		t = P2WPKHType
		if len(program) == 32 {
			t = P2WSHType
		}
	}
	return Address{
		Type:           t,
		Network:        net,
		Encoded:        encoded,
		witnessVersion: version,
	}, nil
}

// Bech32ToScriptPubKey decodes a segwit address carrying prefix hrp and
// returns the raw witness version byte followed by a push of the program.
// For versions 1 and up the first byte is the version number itself, not
// the OP_n opcode; use WitnessScriptPubKey for the consensus form.
func Bech32ToScriptPubKey(hrp, addr string) ([]byte, error) {
	version, program, err := bech32.Decode(hrp, addr)
	if err != nil {
		return nil, err
	}
	push, err := script.EncodePushData(program)
	if err != nil {
		return nil, err
	}
	return append([]byte{version}, push...), nil
}

// All returns every single-key address type for pubkey on net.
func All(pubkey []byte, net network.Network) (map[Type]Address, error) {
	builders := []struct {
		t  Type
		fn func([]byte, network.Network) (Address, error)
	}{
		{P2PKHType, P2PKH},
		{P2WPKHType, P2WPKH},
		{P2SHP2WPKHType, P2SHP2WPKH},
	}

	out := make(map[Type]Address, len(builders))
	for _, b := range builders {
		a, err := b.fn(pubkey, net)
		if err != nil {
			return nil, err
		}
		out[b.t] = a
	}
	return out, nil
}
