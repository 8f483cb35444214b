package regtest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/neverDefined/go-btcaddr/address"
	"github.com/neverDefined/go-btcaddr/network"
)

// CoinbaseMaturity is the number of blocks Setup mines so the first
// block reward is spendable.
const CoinbaseMaturity = 101

// ErrOutputNotFound is returned when no output of a transaction pays the
// requested address.
var ErrOutputNotFound = errors.New("no output pays the address")

// Outpoint identifies a transaction output.
type Outpoint struct {
	TxID  chainhash.Hash
	Index uint32
}

func (o Outpoint) String() string {
	return o.TxID.String() + ":" + strconv.FormatUint(uint64(o.Index), 10)
}

// Wire returns the outpoint as a btcd wire type.
func (o Outpoint) Wire() *wire.OutPoint {
	return wire.NewOutPoint(&o.TxID, o.Index)
}

// Funder sends coins to an address and reports the confirmed output.
type Funder interface {
	FundAddress(ctx context.Context, addr string, amount btcutil.Amount) (Outpoint, error)
}

var _ Funder = (*Regtest)(nil)

// DecodedTx is the subset of decoderawtransaction output used to locate
// outputs.
type DecodedTx struct {
	TxID string          `json:"txid"`
	Vout []DecodedOutput `json:"vout"`
}

// DecodedOutput is one entry of DecodedTx.Vout.
type DecodedOutput struct {
	Value        float64 `json:"value"`
	N            uint32  `json:"n"`
	ScriptPubKey struct {
		Hex     string `json:"hex"`
		Type    string `json:"type"`
		Address string `json:"address"`

		// Addresses is set by Bitcoin Core before 22.0.
		Addresses []string `json:"addresses"`
	} `json:"scriptPubKey"`
}

func (o *DecodedOutput) pays(addr string) bool {
	if o.ScriptPubKey.Address == addr {
		return true
	}
	for _, a := range o.ScriptPubKey.Addresses {
		if a == addr {
			return true
		}
	}
	return false
}

// OutputIndex returns the index of the first output of tx paying addr.
// Every output is checked. A regtest segwit v0 address is also matched by
// scriptPubKey, which covers the uppercase form.
func OutputIndex(tx *DecodedTx, addr string) (uint32, error) {
	for i := range tx.Vout {
		if tx.Vout[i].pays(addr) {
			return tx.Vout[i].N, nil
		}
	}

	if want, ok := regtestWitnessScript(addr); ok {
		for i := range tx.Vout {
			if tx.Vout[i].ScriptPubKey.Hex == want {
				return tx.Vout[i].N, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %s in %s", ErrOutputNotFound, addr, tx.TxID)
}

// regtestWitnessScript returns the hex scriptPubKey of a regtest version 0
// segwit address.
func regtestWitnessScript(addr string) (string, bool) {
	p, err := network.Regtest.Params()
	if err != nil {
		return "", false
	}
	spk, err := address.Bech32ToScriptPubKey(p.Bech32HRP, addr)
	if err != nil || spk[0] != 0 {
		return "", false
	}
	return hex.EncodeToString(spk), true
}

// Setup prepares a fresh chain for funding: it ensures the configured
// wallet, mines CoinbaseMaturity blocks to a new address from it and
// checks the height grew by exactly that much.
func (r *Regtest) Setup(ctx context.Context) error {
	if err := r.EnsureWallet(ctx, r.cfg.Wallet); err != nil {
		return err
	}

	addr, err := r.NewAddress(ctx, r.cfg.Wallet)
	if err != nil {
		return err
	}

	start, err := r.BlockCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block count: %w", err)
	}
	if _, err := r.GenerateToAddress(ctx, CoinbaseMaturity, addr); err != nil {
		return err
	}
	end, err := r.BlockCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to get block count: %w", err)
	}
	if end-start != CoinbaseMaturity {
		return fmt.Errorf("expected %d new blocks, height went from %d to %d", CoinbaseMaturity, start, end)
	}

	r.mu.Lock()
	r.miningAddr = addr
	r.mu.Unlock()

	r.log.Info("chain ready", "height", end, "wallet", r.cfg.Wallet, "mining_address", addr)
	return nil
}

// FundAddress sends amount to addr from the configured wallet, locates
// the paying output and mines one block to confirm it.
//
// Returns:
//   - Outpoint: the funding transaction id and output index
//   - error: if sending, decoding or mining fails, or no output pays addr
//
// Example:
//
//	if err := rt.Setup(ctx); err != nil {
//	    return err
//	}
//	op, err := rt.FundAddress(ctx, "bcrt1q...", btcutil.Amount(100_000_000))
func (r *Regtest) FundAddress(ctx context.Context, addr string, amount btcutil.Amount) (Outpoint, error) {
	txid, err := r.SendToAddress(ctx, addr, amount)
	if err != nil {
		return Outpoint{}, err
	}

	tx, err := r.DecodedTransaction(ctx, txid)
	if err != nil {
		return Outpoint{}, err
	}
	index, err := OutputIndex(tx, addr)
	if err != nil {
		return Outpoint{}, err
	}

	miner, err := r.miningAddress(ctx)
	if err != nil {
		return Outpoint{}, err
	}
	if _, err := r.GenerateToAddress(ctx, 1, miner); err != nil {
		return Outpoint{}, fmt.Errorf("failed to confirm %s: %w", txid, err)
	}

	op := Outpoint{TxID: txid, Index: index}
	r.log.Info("funded address", "address", addr, "amount", amount, "outpoint", op)
	return op, nil
}

func (r *Regtest) miningAddress(ctx context.Context) (string, error) {
	r.mu.Lock()
	addr := r.miningAddr
	r.mu.Unlock()
	if addr != "" {
		return addr, nil
	}

	addr, err := r.NewAddress(ctx, r.cfg.Wallet)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.miningAddr = addr
	r.mu.Unlock()
	return addr, nil
}
