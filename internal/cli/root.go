// Package cli implements the btcaddr command-line interface.
//
// The command tree is built by NewRootCommand so tests can run commands
// in isolation; process-level concerns (exit codes, stderr) live in
// Execute.
package cli

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neverDefined/go-btcaddr/addrerr"
	"github.com/neverDefined/go-btcaddr/address"
	"github.com/neverDefined/go-btcaddr/internal/logging"
	"github.com/neverDefined/go-btcaddr/network"
	"github.com/neverDefined/go-btcaddr/regtest"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInput       = 2 // malformed input
	ExitUnsupported = 3 // well-formed but unsupported request
)

// app holds the state shared by every command of one invocation.
type app struct {
	networkName string
	logLevel    string
	configPath  string

	net network.Network
	log *logging.Logger

	newNode func(*regtest.Config, *logging.Logger) (fundNode, error)
}

// NewRootCommand returns the btcaddr command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&app{newNode: newRegtestNode})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "btcaddr",
		Short: "Bitcoin key, address and script encoding tool",
		Long: `btcaddr derives public keys, WIF strings and addresses from raw keys and
scripts, and converts between the Base58Check, Bech32 and Bech32m encodings.

Example:
  btcaddr pubkey 0000000000000000000000000000000000000000000000000000000000000001
  btcaddr all 0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798
  btcaddr --network regtest p2wpkh 0279be66...
  btcaddr fund bcrt1q... 0.5`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVarP(&a.networkName, "network", "n", "mainnet", "network: mainnet, testnet or regtest")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "regtest YAML config file")

	root.AddCommand(
		a.pubkeyCmd(),
		a.wifCmd(),
		a.wifDecodeCmd(),
		a.pubkeyAddressCmd("p2pkh", "Pay-to-public-key-hash address", address.P2PKH),
		a.pubkeyAddressCmd("p2wpkh", "Native segwit pay-to-public-key-hash address", address.P2WPKH),
		a.pubkeyAddressCmd("p2sh-p2wpkh", "Nested segwit pay-to-public-key-hash address", address.P2SHP2WPKH),
		a.scriptAddressCmd("p2sh", "Pay-to-script-hash address", address.P2SH),
		a.scriptAddressCmd("p2wsh", "Native segwit pay-to-script-hash address", address.P2WSH),
		a.allCmd(),
		a.spkToAddressCmd(),
		a.addressToSpkCmd(),
		a.base58Cmd(),
		a.varintCmd(),
		a.pushdataCmd(),
		a.hashCmd(),
		a.fundCmd(),
	)
	return root
}

func (a *app) prepare(stderr io.Writer) error {
	net, err := network.Parse(a.networkName)
	if err != nil {
		return err
	}
	a.net = net

	a.log = logging.New(&logging.Config{Level: a.logLevel, Output: stderr})
	logging.SetDefault(a.log)
	return nil
}

// Execute runs the command tree with args and returns the process exit
// code. Errors are printed to stderr as "CODE: message".
func Execute(args []string, stdout, stderr io.Writer) int {
	return run(NewRootCommand(), args, stdout, stderr)
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, FormatError(err))
		return ExitCode(err)
	}
	return ExitOK
}

// Main is Execute against the process streams.
func Main() int {
	return Execute(os.Args[1:], os.Stdout, os.Stderr)
}

// FormatError renders err as "CODE: message". Errors without a kind use
// the code ERROR.
func FormatError(err error) string {
	code := string(addrerr.KindOf(err))
	if code == "" {
		code = "ERROR"
	}
	return code + ": " + err.Error()
}

// ExitCode maps err to a process exit code: ExitInput for malformed
// input, ExitUnsupported for other typed codec errors, ExitError otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case addrerr.IsInputError(err):
		return ExitInput
	case addrerr.KindOf(err) != "":
		return ExitUnsupported
	default:
		return ExitError
	}
}

// decodeHex parses a hex argument, tolerating a 0x prefix.
func decodeHex(what, s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		var invalid hex.InvalidByteError
		details := map[string]string{"arg": what}
		if errors.As(err, &invalid) {
			details["byte"] = fmt.Sprintf("%q", byte(invalid))
		}
		return nil, addrerr.WithDetails(
			addrerr.Wrap(addrerr.InvalidEncoding, "cli", err, "%s is not valid hex", what),
			details,
		)
	}
	return b, nil
}

func writeln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}
