package cli

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/keys"
)

var curves = map[string]keys.Curve{
	"btcec":  keys.Btcec,
	"decred": keys.Decred,
}

func (a *app) pubkeyCmd() *cobra.Command {
	var curve string

	cmd := &cobra.Command{
		Use:   "pubkey <privkey-hex>",
		Short: "Derive the compressed public key of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scalar, err := decodeHex("private key", args[0])
			if err != nil {
				return err
			}

			c, ok := curves[curve]
			if !ok {
				return addrerr.New(addrerr.InvalidEncoding, "cli", "unknown curve backend %q", curve)
			}
			pub, err := keys.CompressedPublicKey(c, scalar)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(pub))
			return nil
		},
	}
	cmd.Flags().StringVar(&curve, "curve", "btcec", "curve backend: btcec or decred")
	return cmd
}

func (a *app) wifCmd() *cobra.Command {
	var uncompressed bool

	cmd := &cobra.Command{
		Use:   "wif <privkey-hex>",
		Short: "Encode a private key in Wallet Import Format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scalar, err := decodeHex("private key", args[0])
			if err != nil {
				return err
			}
			wif, err := keys.PrivateToWIF(scalar, !uncompressed, a.net)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), wif)
			return nil
		},
	}
	cmd.Flags().BoolVar(&uncompressed, "uncompressed", false, "mark the key as using an uncompressed public key")
	return cmd
}

func (a *app) wifDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wif-decode <wif>",
		Short: "Decode and verify a Wallet Import Format key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := keys.DecodeWIF(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			writeln(out, "privkey:   ", hex.EncodeToString(w.Scalar))
			writeln(out, "compressed:", strconv.FormatBool(w.Compressed))
			writeln(out, "network:   ", w.Network.String())
			return nil
		},
	}
}
