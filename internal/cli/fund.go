package cli

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/cobra"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/address"
	"github.com/neverDefined/go-btcaddr/base58check"
	"github.com/neverDefined/go-btcaddr/internal/logging"
	"github.com/neverDefined/go-btcaddr/network"
	"github.com/neverDefined/go-btcaddr/regtest"
)

// fundNode is the part of *regtest.Regtest the fund command drives.
type fundNode interface {
	regtest.Funder
	IsRunning(ctx context.Context) bool
	Start(ctx context.Context) error
	Setup(ctx context.Context) error
	Stop() error
}

func newRegtestNode(cfg *regtest.Config, log *logging.Logger) (fundNode, error) {
	return regtest.New(cfg, regtest.WithLogger(log.Component("regtest")))
}

// loadRegtestConfig reads --config when given, then applies environment
// overrides.
func (a *app) loadRegtestConfig() (*regtest.Config, error) {
	cfg := regtest.DefaultConfig()
	if a.configPath != "" {
		var err error
		if cfg, err = regtest.LoadConfig(a.configPath); err != nil {
			return nil, err
		}
	}
	regtest.ApplyEnvironment(cfg)
	return cfg, nil
}

// checkRegtestAddress rejects addresses that cannot be paid on regtest.
func checkRegtestAddress(addr string) error {
	const op = "cli.fund"

	p, err := network.Regtest.Params()
	if err != nil {
		return err
	}
	if strings.HasPrefix(strings.ToLower(addr), p.Bech32HRP+"1") {
		_, err := address.Bech32ToScriptPubKey(p.Bech32HRP, addr)
		return err
	}

	version, payload, err := base58check.CheckDecode(addr)
	if err != nil {
		return err
	}
	if version != p.PubKeyHashAddrID && version != p.ScriptHashAddrID {
		return addrerr.WithDetails(
			addrerr.New(addrerr.UnknownNetwork, op, "not a regtest address"),
			map[string]string{"version": strconv.Itoa(int(version))},
		)
	}
	if len(payload) != 20 {
		return addrerr.New(addrerr.InvalidEncoding, op, "hash of %d bytes, want 20", len(payload))
	}

	params, err := network.Regtest.ChainParams()
	if err != nil {
		return err
	}
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return addrerr.Wrap(addrerr.InvalidEncoding, op, err, "not a standard address")
	}
	if !decoded.IsForNet(params) {
		return addrerr.New(addrerr.UnknownNetwork, op, "address is not for %s", params.Name)
	}
	return nil
}

func parseBTC(s string) (btcutil.Amount, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, addrerr.Wrap(addrerr.InvalidEncoding, "cli.fund", err, "%q is not a BTC amount", s)
	}
	amt, err := btcutil.NewAmount(f)
	if err != nil {
		return 0, addrerr.Wrap(addrerr.InvalidEncoding, "cli.fund", err, "%q is not a BTC amount", s)
	}
	if amt <= 0 {
		return 0, addrerr.New(addrerr.InvalidEncoding, "cli.fund", "amount must be positive, got %v", amt)
	}
	return amt, nil
}

func (a *app) fundCmd() *cobra.Command {
	var (
		stop    bool
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fund <address> <btc>",
		Short: "Fund an address on a local regtest node",
		Long: `Fund an address on a local regtest node and print the confirmed outpoint.

A node is started when none answers on the configured RPC host. The
configured wallet is created, 101 blocks are mined so its coinbase can be
spent, the payment is sent and one block is mined to confirm it.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkRegtestAddress(args[0]); err != nil {
				return err
			}
			amount, err := parseBTC(args[1])
			if err != nil {
				return err
			}

			cfg, err := a.loadRegtestConfig()
			if err != nil {
				return err
			}
			node, err := a.newNode(cfg, a.log)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if !node.IsRunning(ctx) {
				if err := node.Start(ctx); err != nil {
					return err
				}
			}
			if stop {
				defer func() {
					if err := node.Stop(); err != nil {
						a.log.Warn("failed to stop node", "err", err)
					}
				}()
			}

			if err := node.Setup(ctx); err != nil {
				return err
			}
			op, err := node.FundAddress(ctx, args[0], amount)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), op)
			return nil
		},
	}
	cmd.Flags().BoolVar(&stop, "stop", false, "stop the node after funding")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline")
	return cmd
}
