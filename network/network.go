// Package network defines the Bitcoin networks an address can target and
// the version bytes and prefixes each one uses.
package network

import (
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/neverDefined/go-btcaddr/addrerr"
)

// Network identifies a Bitcoin network. The zero value is not a valid
// network.
type Network uint8

// Supported networks.
const (
	Mainnet Network = iota + 1
	Testnet
	Regtest
)

// Params holds the encoding constants for a network.
type Params struct {
	Name             string
	PubKeyHashAddrID byte   // P2PKH version byte
	ScriptHashAddrID byte   // P2SH version byte
	PrivateKeyID     byte   // WIF version byte
	Bech32HRP        string // segwit human-readable prefix
}

// Testnet and regtest share Base58 version bytes; only the Bech32 prefix
// tells them apart.
var params = map[Network]Params{
	Mainnet: {
		Name:             "mainnet",
		PubKeyHashAddrID: 0x00, // 1...
		ScriptHashAddrID: 0x05, // 3...
		PrivateKeyID:     0x80,
		Bech32HRP:        "bc",
	},
	Testnet: {
		Name:             "testnet",
		PubKeyHashAddrID: 0x6f, // m or n
		ScriptHashAddrID: 0xc4, // 2...
		PrivateKeyID:     0xef,
		Bech32HRP:        "tb",
	},
	Regtest: {
		Name:             "regtest",
		PubKeyHashAddrID: 0x6f,
		ScriptHashAddrID: 0xc4,
		PrivateKeyID:     0xef,
		Bech32HRP:        "bcrt",
	},
}

// All returns the supported networks in declaration order.
func All() []Network {
	return []Network{Mainnet, Testnet, Regtest}
}

// Valid reports whether n is a supported network.
func (n Network) Valid() bool {
	_, ok := params[n]
	return ok
}

func (n Network) String() string {
	if p, ok := params[n]; ok {
		return p.Name
	}
	return "unknown(" + strconv.Itoa(int(n)) + ")"
}

func unknown(op string, n Network) error {
	return addrerr.WithDetails(
		addrerr.New(addrerr.UnknownNetwork, op, "unknown network"),
		map[string]string{"network": strconv.Itoa(int(n))},
	)
}

// Params returns the encoding constants for n.
func (n Network) Params() (Params, error) {
	p, ok := params[n]
	if !ok {
		return Params{}, unknown("network.Params", n)
	}
	return p, nil
}

// ChainParams returns the btcd chain parameters for n.
func (n Network) ChainParams() (*chaincfg.Params, error) {
	switch n {
	case Mainnet:
		return &chaincfg.MainNetParams, nil
	case Testnet:
		return &chaincfg.TestNet3Params, nil
	case Regtest:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, unknown("network.ChainParams", n)
	}
}

// Parse maps a network name to a Network. Matching is case-insensitive.
func Parse(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", "main", "bitcoin":
		return Mainnet, nil
	case "testnet", "test", "testnet3":
		return Testnet, nil
	case "regtest", "reg":
		return Regtest, nil
	default:
		return 0, addrerr.WithDetails(
			addrerr.New(addrerr.UnknownNetwork, "network.Parse", "unknown network name"),
			map[string]string{"name": s},
		)
	}
}

// FromHRP returns the network using the given Bech32 prefix.
func FromHRP(hrp string) (Network, error) {
	hrp = strings.ToLower(hrp)
	for _, n := range All() {
		if params[n].Bech32HRP == hrp {
			return n, nil
		}
	}
	return 0, addrerr.WithDetails(
		addrerr.New(addrerr.UnknownNetwork, "network.FromHRP", "unknown human-readable prefix"),
		map[string]string{"hrp": hrp},
	)
}
