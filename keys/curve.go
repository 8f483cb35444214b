package keys

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/neverDefined/go-btcaddr/addrerr"
)

// ScalarSize is the length of a secp256k1 private scalar.
const ScalarSize = 32

// Point is an affine secp256k1 point with big-endian coordinates.
type Point struct {
	X [32]byte
	Y [32]byte
}

// Curve multiplies the secp256k1 base point by a private scalar. A Curve
// must reject scalars that are not 32 bytes or fall outside [1, n-1] with
// an InvalidScalar error.
type Curve interface {
	ScalarBaseMult(scalar []byte) (Point, error)
}

// Btcec is the Curve backed by github.com/btcsuite/btcd/btcec/v2.
var Btcec Curve = btcecCurve{}

// Decred is the Curve backed by github.com/decred/dcrd/dcrec/secp256k1/v4.
var Decred Curve = decredCurve{}

type btcecCurve struct{}

func (btcecCurve) ScalarBaseMult(scalar []byte) (Point, error) {
	var k btcec.ModNScalar
	if err := checkScalar("keys.Btcec", scalar, &k); err != nil {
		return Point{}, err
	}
	_, pub := btcec.PrivKeyFromBytes(scalar)
	return pointFromUncompressed(pub.SerializeUncompressed()), nil
}

type decredCurve struct{}

func (decredCurve) ScalarBaseMult(scalar []byte) (Point, error) {
	var k secp256k1.ModNScalar
	if err := checkScalar("keys.Decred", scalar, &k); err != nil {
		return Point{}, err
	}
	pub := secp256k1.PrivKeyFromBytes(scalar).PubKey()
	return pointFromUncompressed(pub.SerializeUncompressed()), nil
}

// checkScalar loads scalar into k, rejecting wrong lengths, zero and
// values not below the group order.
func checkScalar(op string, scalar []byte, k *secp256k1.ModNScalar) error {
	if len(scalar) != ScalarSize {
		return addrerr.New(addrerr.InvalidScalar, op, "scalar must be %d bytes, got %d", ScalarSize, len(scalar))
	}
	if overflow := k.SetByteSlice(scalar); overflow {
		return addrerr.New(addrerr.InvalidScalar, op, "scalar is not below the curve order")
	}
	if k.IsZero() {
		return addrerr.New(addrerr.InvalidScalar, op, "scalar is zero")
	}
	return nil
}

// pointFromUncompressed splits a 65-byte 0x04 || X || Y serialization.
func pointFromUncompressed(b []byte) Point {
	var p Point
	copy(p.X[:], b[1:33])
	copy(p.Y[:], b[33:65])
	return p
}
