// Package bech32 encodes and decodes segregated witness addresses as
// defined by BIP-173 (Bech32) and BIP-350 (Bech32m).
//
// The checksum constant is tied to the witness version: version 0 uses
// Bech32 and versions 1 through 16 use Bech32m. Decode verifies the
// checksum against the constant implied by the decoded version, so a
// version 0 program carrying a Bech32m checksum is rejected, and the
// reverse.
package bech32

import (
	"strings"

	"github.com/neverDefined/go-btcaddr/addrerr"
)

// Charset maps 5-bit words to characters.
const Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Format limits.
const (
	MaxLength         = 90
	MaxHRPLength      = 83
	ChecksumLength    = 6
	MinProgramLength  = 2
	MaxProgramLength  = 40
	MaxWitnessVersion = 16
)

// Encoding selects the checksum constant.
type Encoding uint8

// Supported encodings.
const (
	Bech32 Encoding = iota + 1
	Bech32m
)

const (
	bech32Const  uint32 = 1
	bech32mConst uint32 = 0x2bc830a3
)

// Constant returns the value the checksum polymod must evaluate to.
func (e Encoding) Constant() uint32 {
	if e == Bech32m {
		return bech32mConst
	}
	return bech32Const
}

func (e Encoding) String() string {
	switch e {
	case Bech32:
		return "bech32"
	case Bech32m:
		return "bech32m"
	default:
		return "unknown"
	}
}

// EncodingFor returns the encoding mandated for a witness version.
func EncodingFor(version byte) Encoding {
	if version == 0 {
		return Bech32
	}
	return Bech32m
}

var generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

// charsetRev maps ASCII bytes back to 5-bit words; -1 marks a byte
// outside the charset.
var charsetRev = func() [128]int8 {
	var rev [128]int8
	for i := range rev {
		rev[i] = -1
	}
	for i := 0; i < len(Charset); i++ {
		rev[Charset[i]] = int8(i)
	}
	return rev
}()

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= generator[i]
			}
		}
	}
	return chk
}

func hrpExpand(hrp string) []byte {
	out := make([]byte, 0, len(hrp)*2+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

func createChecksum(hrp string, data []byte, enc Encoding) []byte {
	values := hrpExpand(hrp)
	values = append(values, data...)
	values = append(values, make([]byte, ChecksumLength)...)
	mod := polymod(values) ^ enc.Constant()

	checksum := make([]byte, ChecksumLength)
	for i := range checksum {
		checksum[i] = byte((mod >> uint(5*(5-i))) & 31)
	}
	return checksum
}

func checksumResidue(hrp string, data []byte) uint32 {
	values := hrpExpand(hrp)
	values = append(values, data...)
	return polymod(values)
}

// ConvertBits regroups data from fromBits-wide words into toBits-wide
// words. With pad set, a trailing partial group is zero-padded; without
// it, leftover bits must be fewer than fromBits and all zero.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	const op = "bech32.ConvertBits"

	var acc, bits uint
	maxv := uint(1)<<toBits - 1
	ret := make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	for _, value := range data {
		if uint(value)>>fromBits != 0 {
			return nil, addrerr.New(addrerr.InvalidEncoding, op, "value %d exceeds %d bits", value, fromBits)
		}
		acc = acc<<fromBits | uint(value)
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			ret = append(ret, byte(acc>>bits&maxv))
		}
	}

	switch {
	case pad:
		if bits > 0 {
			ret = append(ret, byte(acc<<(toBits-bits)&maxv))
		}
	case bits >= fromBits:
		return nil, addrerr.New(addrerr.InvalidEncoding, op, "excess padding")
	case acc<<(toBits-bits)&maxv != 0:
		return nil, addrerr.New(addrerr.InvalidEncoding, op, "non-zero padding")
	}
	return ret, nil
}

func checkProgram(op string, version byte, program []byte) error {
	n := len(program)
	if n < MinProgramLength || n > MaxProgramLength {
		return addrerr.New(addrerr.InvalidProgramLength, op,
			"program length %d outside %d..%d", n, MinProgramLength, MaxProgramLength)
	}
	if version == 0 && n != 20 && n != 32 {
		return addrerr.New(addrerr.InvalidProgramLength, op,
			"version 0 program must be 20 or 32 bytes, got %d", n)
	}
	return nil
}

func checkHRP(op, hrp string) error {
	if len(hrp) < 1 || len(hrp) > MaxHRPLength {
		return addrerr.New(addrerr.InvalidEncoding, op, "human-readable prefix length %d", len(hrp))
	}
	for i := 0; i < len(hrp); i++ {
		if hrp[i] < 33 || hrp[i] > 126 {
			return addrerr.New(addrerr.InvalidEncoding, op, "invalid human-readable prefix character %q", hrp[i])
		}
	}
	if strings.ToLower(hrp) != hrp && strings.ToUpper(hrp) != hrp {
		return addrerr.New(addrerr.InvalidEncoding, op, "mixed-case human-readable prefix")
	}
	return nil
}

// Encode returns the segwit address for a witness program under hrp.
func Encode(hrp string, version byte, program []byte) (string, error) {
	const op = "bech32.Encode"

	if version > MaxWitnessVersion {
		return "", addrerr.New(addrerr.InvalidEncoding, op, "witness version %d exceeds %d", version, MaxWitnessVersion)
	}
	if err := checkProgram(op, version, program); err != nil {
		return "", err
	}
	if err := checkHRP(op, hrp); err != nil {
		return "", err
	}
	hrp = strings.ToLower(hrp)

	words, err := ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	data := make([]byte, 0, 1+len(words)+ChecksumLength)
	data = append(data, version)
	data = append(data, words...)
	data = append(data, createChecksum(hrp, data, EncodingFor(version))...)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(data))
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, w := range data {
		sb.WriteByte(Charset[w])
	}
	if sb.Len() > MaxLength {
		return "", addrerr.New(addrerr.InvalidEncoding, op, "encoded length %d exceeds %d", sb.Len(), MaxLength)
	}
	return sb.String(), nil
}

// split validates the character set and structure of s and returns the
// lowercased prefix and the 5-bit data words, checksum included.
func split(op, s string) (string, []byte, error) {
	if len(s) > MaxLength {
		return "", nil, addrerr.New(addrerr.InvalidEncoding, op, "length %d exceeds %d", len(s), MaxLength)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 33 || s[i] > 126 {
			return "", nil, addrerr.New(addrerr.InvalidEncoding, op, "invalid character %q at %d", s[i], i)
		}
	}

	lower := strings.ToLower(s)
	if s != lower && s != strings.ToUpper(s) {
		return "", nil, addrerr.New(addrerr.InvalidEncoding, op, "mixed case")
	}
	s = lower

	pos := strings.LastIndexByte(s, '1')
	if pos < 1 || pos+ChecksumLength+1 > len(s) {
		return "", nil, addrerr.New(addrerr.InvalidEncoding, op, "missing or misplaced separator")
	}

	hrp := s[:pos]
	data := make([]byte, 0, len(s)-pos-1)
	for i := pos + 1; i < len(s); i++ {
		w := charsetRev[s[i]]
		if w < 0 {
			return "", nil, addrerr.New(addrerr.InvalidEncoding, op, "invalid data character %q at %d", s[i], i)
		}
		data = append(data, byte(w))
	}
	return hrp, data, nil
}

// Decode parses a segwit address and returns its witness version and
// program. The address must carry the expected prefix hrp.
func Decode(hrp, addr string) (byte, []byte, error) {
	const op = "bech32.Decode"

	gotHRP, data, err := split(op, addr)
	if err != nil {
		return 0, nil, err
	}
	if gotHRP != strings.ToLower(hrp) {
		return 0, nil, addrerr.WithDetails(
			addrerr.New(addrerr.InvalidEncoding, op, "human-readable prefix mismatch"),
			map[string]string{"want": hrp, "got": gotHRP},
		)
	}
	if len(data) < 1+ChecksumLength {
		return 0, nil, addrerr.New(addrerr.InvalidEncoding, op, "empty data section")
	}

	version := data[0]
	enc := EncodingFor(version)
	if checksumResidue(gotHRP, data) != enc.Constant() {
		return 0, nil, addrerr.WithDetails(
			addrerr.New(addrerr.InvalidChecksum, op, "checksum mismatch"),
			map[string]string{"encoding": enc.String()},
		)
	}
	if version > MaxWitnessVersion {
		return 0, nil, addrerr.New(addrerr.InvalidEncoding, op, "witness version %d exceeds %d", version, MaxWitnessVersion)
	}

	program, err := ConvertBits(data[1:len(data)-ChecksumLength], 5, 8, false)
	if err != nil {
		return 0, nil, err
	}
	if err := checkProgram(op, version, program); err != nil {
		return 0, nil, err
	}
	return version, program, nil
}
