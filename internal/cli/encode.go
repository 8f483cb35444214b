package cli

import (
	"encoding/hex"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/base58check"
	"github.com/neverDefined/go-btcaddr/digest"
	"github.com/neverDefined/go-btcaddr/script"
)

func (a *app) base58Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "base58",
		Short: "Base58Check encoding",
	}

	encode := &cobra.Command{
		Use:   "encode <payload-hex>",
		Short: "Append a checksum and Base58-encode a payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := decodeHex("payload", args[0])
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), base58check.Encode(payload))
			return nil
		},
	}

	var check bool
	decode := &cobra.Command{
		Use:   "decode <string>",
		Short: "Base58-decode a string",
		Long: `Base58-decode a string. Without --check the output is the raw decoding,
checksum included; with --check the checksum is verified and stripped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decodeFn := base58check.Decode
			if check {
				decodeFn = base58check.DecodeCheck
			}
			b, err := decodeFn(args[0])
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
	decode.Flags().BoolVar(&check, "check", false, "verify and strip the 4-byte checksum")

	cmd.AddCommand(encode, decode)
	return cmd
}

func (a *app) varintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "varint <n>",
		Short: "Encode a length as a compact-size integer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return addrerr.Wrap(addrerr.InvalidEncoding, "cli", err, "%q is not an integer", args[0])
			}
			b, err := script.EncodeVarint(n)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
}

func (a *app) pushdataCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pushdata <data-hex>",
		Short: "Prefix data with its script push encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := decodeHex("data", args[0])
			if err != nil {
				return err
			}
			b, err := script.EncodePushData(data)
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(b))
			return nil
		},
	}
}

var hashFuncs = map[string]func([]byte) []byte{
	"sha256":  digest.Sha256,
	"hash256": digest.Hash256,
	"hash160": digest.Hash160,
}

func (a *app) hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "hash <sha256|hash256|hash160> <data-hex>",
		Short:     "Hash data with a Bitcoin digest function",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"sha256", "hash256", "hash160"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fn, ok := hashFuncs[args[0]]
			if !ok {
				return addrerr.New(addrerr.InvalidEncoding, "cli", "unknown hash function %q", args[0])
			}
			data, err := decodeHex("data", args[1])
			if err != nil {
				return err
			}
			writeln(cmd.OutOrStdout(), hex.EncodeToString(fn(data)))
			return nil
		},
	}
}
