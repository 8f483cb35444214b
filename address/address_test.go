package address

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/digest"
	"github.com/neverDefined/go-btcaddr/keys"
	"github.com/neverDefined/go-btcaddr/network"
)

// generatorPubKey is the compressed public key for private scalar 1.
const generatorPubKey = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestKnownVectors(t *testing.T) {
	t.Parallel()

	pub := mustHex(t, generatorPubKey)

	p2pkh, err := P2PKH(pub, network.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", p2pkh.String())
	assert.Equal(t, P2PKHType, p2pkh.Type)
	assert.Equal(t, FormatBase58Check, p2pkh.Format())

	p2wpkh, err := P2WPKH(pub, network.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", p2wpkh.String())
	assert.Equal(t, P2WPKHType, p2wpkh.Type)
	assert.Equal(t, FormatBech32, p2wpkh.Format())

	tb, err := P2WPKH(pub, network.Testnet)
	require.NoError(t, err)
	assert.Equal(t, "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", tb.String())
}

func TestP2SHP2WPKH_Recipe(t *testing.T) {
	t.Parallel()

	pub := mustHex(t, generatorPubKey)

	redeem := RedeemScriptP2WPKH(pub)
	assert.Equal(t, "0014751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(redeem))

	nested, err := P2SHP2WPKH(pub, network.Mainnet)
	require.NoError(t, err)

	plain, err := P2SH(redeem, network.Mainnet)
	require.NoError(t, err)
	assert.Equal(t, plain.Encoded, nested.Encoded)
	assert.Equal(t, P2SHP2WPKHType, nested.Type)
	assert.Equal(t, byte('3'), nested.Encoded[0])
}

func TestConstructors_MatchBtcutil(t *testing.T) {
	t.Parallel()

	redeem := mustHex(t, "5121"+generatorPubKey+"51ae")

	for _, net := range network.All() {
		cp, err := net.ChainParams()
		require.NoError(t, err)

		for i := byte(1); i <= 8; i++ {
			scalar := make([]byte, keys.ScalarSize)
			scalar[0] = i
			scalar[31] = i * 3
			pub, err := keys.PrivateToCompressedPublic(scalar)
			require.NoError(t, err)

			t.Run(fmt.Sprintf("%s/%d", net, i), func(t *testing.T) {
				wantPKH, err := btcutil.NewAddressPubKeyHash(btcutil.Hash160(pub), cp)
				require.NoError(t, err)
				got, err := P2PKH(pub, net)
				require.NoError(t, err)
				assert.Equal(t, wantPKH.EncodeAddress(), got.Encoded)

				wantWPKH, err := btcutil.NewAddressWitnessPubKeyHash(btcutil.Hash160(pub), cp)
				require.NoError(t, err)
				got, err = P2WPKH(pub, net)
				require.NoError(t, err)
				assert.Equal(t, wantWPKH.EncodeAddress(), got.Encoded)

				witnessScript, err := txscript.PayToAddrScript(wantWPKH)
				require.NoError(t, err)
				wantNested, err := btcutil.NewAddressScriptHash(witnessScript, cp)
				require.NoError(t, err)
				got, err = P2SHP2WPKH(pub, net)
				require.NoError(t, err)
				assert.Equal(t, wantNested.EncodeAddress(), got.Encoded)
			})
		}

		wantSH, err := btcutil.NewAddressScriptHash(redeem, cp)
		require.NoError(t, err)
		got, err := P2SH(redeem, net)
		require.NoError(t, err)
		assert.Equal(t, wantSH.EncodeAddress(), got.Encoded)

		wantWSH, err := btcutil.NewAddressWitnessScriptHash(digest.Sha256(redeem), cp)
		require.NoError(t, err)
		got, err = P2WSH(redeem, net)
		require.NoError(t, err)
		assert.Equal(t, wantWSH.EncodeAddress(), got.Encoded)
		assert.Equal(t, P2WSHType, got.Type)
	}
}

func TestWitnessScriptPubKey(t *testing.T) {
	t.Parallel()

	hash20 := bytes.Repeat([]byte{0xab}, 20)
	hash32 := bytes.Repeat([]byte{0xcd}, 32)

	spk, err := WitnessScriptPubKey(0, hash20)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x00, 0x14}, hash20...), spk)

	spk, err = WitnessScriptPubKey(1, hash32)
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0x51, 0x20}, hash32...), spk)

	spk, err = WitnessScriptPubKey(16, hash20[:2])
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x02, 0xab, 0xab}, spk)

	_, err = WitnessScriptPubKey(17, hash20)
	require.ErrorIs(t, err, addrerr.ErrInvalidEncoding)

	_, err = WitnessScriptPubKey(1, hash20[:1])
	require.ErrorIs(t, err, addrerr.ErrInvalidProgramLength)

	_, err = WitnessScriptPubKey(1, make([]byte, 41))
	require.ErrorIs(t, err, addrerr.ErrInvalidProgramLength)
}

func TestScriptPubKeyToBech32_Taproot(t *testing.T) {
	t.Parallel()

	program := bytes.Repeat([]byte{0x5a}, 32)
	spk, err := WitnessScriptPubKey(1, program)
	require.NoError(t, err)

	for _, net := range network.All() {
		cp, err := net.ChainParams()
		require.NoError(t, err)
		want, err := btcutil.NewAddressTaproot(program, cp)
		require.NoError(t, err)

		got, err := ScriptPubKeyToBech32(spk, net)
		require.NoError(t, err)
		assert.Equal(t, want.EncodeAddress(), got.Encoded)
		assert.Equal(t, WitnessUnknownType, got.Type)
		assert.Equal(t, FormatBech32m, got.Format())
		assert.Equal(t, byte(1), got.WitnessVersion())
	}
}

func TestScriptPubKeyToBech32_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		spk  []byte
		net  network.Network
		want *addrerr.Error
	}{
		{
			name: "unknown network",
			spk:  append([]byte{0x00, 0x14}, make([]byte, 20)...),
			net:  network.Network(42),
			want: addrerr.ErrUnknownNetwork,
		},
		{
			name: "empty",
			spk:  nil,
			net:  network.Mainnet,
			want: addrerr.ErrInvalidEncoding,
		},
		{
			name: "not a version opcode",
			spk:  append([]byte{0x76, 0x14}, make([]byte, 20)...),
			net:  network.Mainnet,
			want: addrerr.ErrInvalidEncoding,
		},
		{
			name: "push length mismatch",
			spk:  append([]byte{0x00, 0x14}, make([]byte, 19)...),
			net:  network.Mainnet,
			want: addrerr.ErrInvalidEncoding,
		},
		{
			name: "version 0 with 25 byte program",
			spk:  append([]byte{0x00, 0x19}, make([]byte, 25)...),
			net:  network.Mainnet,
			want: addrerr.ErrInvalidProgramLength,
		},
		{
			name: "program too short",
			spk:  []byte{0x51, 0x01, 0x00},
			net:  network.Mainnet,
			want: addrerr.ErrInvalidProgramLength,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScriptPubKeyToBech32(tc.spk, tc.net)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestBech32ToScriptPubKey(t *testing.T) {
	t.Parallel()

	spk, err := Bech32ToScriptPubKey("bc", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	require.NoError(t, err)
	assert.Equal(t, "0014751e76e8199196d454941c45d1b3a323f1433bd6", hex.EncodeToString(spk))

	program := bytes.Repeat([]byte{0x11}, 32)
	consensus, err := WitnessScriptPubKey(1, program)
	require.NoError(t, err)
	addr, err := ScriptPubKeyToBech32(consensus, network.Regtest)
	require.NoError(t, err)

	raw, err := Bech32ToScriptPubKey("bcrt", addr.Encoded)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), raw[0])
	assert.Equal(t, consensus[1:], raw[1:])

	_, err = Bech32ToScriptPubKey("tb", "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	require.ErrorIs(t, err, addrerr.ErrInvalidEncoding)
}

func TestVersionZeroRoundTrip(t *testing.T) {
	t.Parallel()

	for _, size := range []int{20, 32} {
		program := bytes.Repeat([]byte{byte(size)}, size)
		spk, err := WitnessScriptPubKey(0, program)
		require.NoError(t, err)

		for _, net := range network.All() {
			addr, err := ScriptPubKeyToBech32(spk, net)
			require.NoError(t, err)

			p, err := net.Params()
			require.NoError(t, err)
			back, err := Bech32ToScriptPubKey(p.Bech32HRP, addr.Encoded)
			require.NoError(t, err)
			assert.Equal(t, spk, back)
		}
	}
}

func TestConstructors_UnknownNetwork(t *testing.T) {
	t.Parallel()

	pub := mustHex(t, generatorPubKey)
	bad := network.Network(0)

	constructors := map[string]func([]byte, network.Network) (Address, error){
		"p2pkh":       P2PKH,
		"p2sh":        P2SH,
		"p2wpkh":      P2WPKH,
		"p2wsh":       P2WSH,
		"p2sh-p2wpkh": P2SHP2WPKH,
	}
	for name, fn := range constructors {
		t.Run(name, func(t *testing.T) {
			_, err := fn(pub, bad)
			require.ErrorIs(t, err, addrerr.ErrUnknownNetwork)
		})
	}

	_, err := All(pub, bad)
	require.ErrorIs(t, err, addrerr.ErrUnknownNetwork)
}

func TestAll(t *testing.T) {
	t.Parallel()

	pub := mustHex(t, generatorPubKey)
	all, err := All(pub, network.Mainnet)
	require.NoError(t, err)
	require.Len(t, all, 3)

	assert.Equal(t, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH", all[P2PKHType].Encoded)
	assert.Equal(t, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", all[P2WPKHType].Encoded)
	for typ, a := range all {
		assert.Equal(t, typ, a.Type)
		assert.Equal(t, network.Mainnet, a.Network)
	}
}

func TestInputsNotMutated(t *testing.T) {
	t.Parallel()

	pub := mustHex(t, generatorPubKey)
	orig := append([]byte(nil), pub...)

	_, err := All(pub, network.Testnet)
	require.NoError(t, err)
	_, err = P2WSH(pub, network.Testnet)
	require.NoError(t, err)
	assert.Equal(t, orig, pub)
}

func TestParallelBatch(t *testing.T) {
	t.Parallel()

	const n = 64
	scalars := make([][]byte, n)
	for i := range scalars {
		s := make([]byte, keys.ScalarSize)
		s[30] = byte(i >> 8)
		s[31] = byte(i + 1)
		scalars[i] = s
	}

	derive := func(s []byte) string {
		pub, err := keys.PrivateToCompressedPublic(s)
		if err != nil {
			return err.Error()
		}
		a, err := P2WPKH(pub, network.Mainnet)
		if err != nil {
			return err.Error()
		}
		return a.Encoded
	}

	want := make([]string, n)
	for i, s := range scalars {
		want[i] = derive(s)
	}

	got := make([]string, n)
	var wg sync.WaitGroup
	for i, s := range scalars {
		wg.Add(1)
		go func(i int, s []byte) {
			defer wg.Done()
			got[i] = derive(s)
		}(i, s)
	}
	wg.Wait()

	assert.Equal(t, want, got)
}

func TestTypeAndFormatStrings(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "p2sh-p2wpkh", P2SHP2WPKHType.String())
	assert.Equal(t, "unknown(99)", Type(99).String())
	assert.Equal(t, "bech32m", FormatBech32m.String())
}
