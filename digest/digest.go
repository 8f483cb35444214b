// Package digest provides the hash functions used by Bitcoin addresses.
package digest

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	// RIPEMD160 is deprecated but REQUIRED by Bitcoin protocol (BIP-13, BIP-16).
	// Hash160 = RIPEMD160(SHA256(data)) is what P2PKH and P2SH commit to.
	//nolint:gosec,staticcheck // G507,SA1019: RIPEMD160 required by Bitcoin protocol
	"golang.org/x/crypto/ripemd160"
)

// Sizes of the digests in bytes.
const (
	Sha256Size  = chainhash.HashSize
	Hash256Size = chainhash.HashSize
	Hash160Size = ripemd160.Size
)

// Sha256 computes a single round of SHA256.
func Sha256(data []byte) []byte {
	return chainhash.HashB(data)
}

// Hash256 computes SHA256(SHA256(data)).
func Hash256(data []byte) []byte {
	return chainhash.DoubleHashB(data)
}

// Hash160 computes RIPEMD160(SHA256(data)).
//
//nolint:gosec // G406: RIPEMD160 is part of Bitcoin address hashing
func Hash160(data []byte) []byte {
	h := ripemd160.New()
	h.Write(chainhash.HashB(data))
	return h.Sum(nil)
}
