package cli

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neverDefined/go-btcaddr/address"
	"github.com/neverDefined/go-btcaddr/network"
)

type addressBuilder func([]byte, network.Network) (address.Address, error)

func (a *app) pubkeyAddressCmd(use, short string, build addressBuilder) *cobra.Command {
	return a.addressCmd(use+" <pubkey-hex>", "public key", short, build)
}

func (a *app) scriptAddressCmd(use, short string, build addressBuilder) *cobra.Command {
	return a.addressCmd(use+" <script-hex>", "script", short, build)
}

func (a *app) addressCmd(use, input, short string, build addressBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeHex(input, args[0])
			if err != nil {
				return err
			}
			addr, err := build(data, a.net)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
}

func (a *app) allCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all <pubkey-hex>",
		Short: "Every single-key address for a public key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pub, err := decodeHex("public key", args[0])
			if err != nil {
				return err
			}
			all, err := address.All(pub, a.net)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, t := range []address.Type{address.P2PKHType, address.P2SHP2WPKHType, address.P2WPKHType} {
				writeln(out, fmt.Sprintf("%-12s %s", t, all[t]))
			}
			return nil
		},
	}
}

func (a *app) spkToAddressCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spk-to-address <scriptpubkey-hex>",
		Short: "Encode a witness scriptPubKey as a segwit address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spk, err := decodeHex("scriptPubKey", args[0])
			if err != nil {
				return err
			}
			addr, err := address.ScriptPubKeyToBech32(spk, a.net)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), addr)
			return nil
		},
	}
}

func (a *app) addressToSpkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "address-to-spk <address>",
		Short: "Decode a segwit address to version byte and program push",
		Long: `Decode a segwit address for the selected network. The output starts with the
raw witness version byte followed by the push-data encoded program; for
version 0 this is the scriptPubKey itself.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.net.Params()
			if err != nil {
				return err
			}
			spk, err := address.Bech32ToScriptPubKey(p.Bech32HRP, args[0])
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(spk))
			return nil
		},
	}
}
