package regtest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/rpcclient"

	"github.com/neverDefined/go-btcaddr/internal/logging"
)

// ---------------------------------------------------------------
//  Bitcoin Core Node Management
// ---------------------------------------------------------------

// Caller is the part of *rpcclient.Client a Regtest uses. Every request
// goes through RawRequest so one code path serves Bitcoin Core RPCs that
// btcd does not model.
type Caller interface {
	RawRequest(method string, params []json.RawMessage) (json.RawMessage, error)
	Shutdown()
}

// Dialer opens a Caller for a connection config.
type Dialer func(cfg *rpcclient.ConnConfig) (Caller, error)

func dialRPC(cfg *rpcclient.ConnConfig) (Caller, error) {
	return rpcclient.New(cfg, nil)
}

// Option customizes a Regtest.
type Option func(*Regtest)

// WithLogger sets the logger. The default is the process logger's
// "regtest" component.
func WithLogger(l *logging.Logger) Option {
	return func(r *Regtest) { r.log = l }
}

// WithDialer replaces the RPC dialer.
func WithDialer(d Dialer) Option {
	return func(r *Regtest) { r.dial = d }
}

// Regtest manages one bitcoind regtest process and the RPC clients that
// talk to it. It is safe for concurrent use.
type Regtest struct {
	cfg  *Config
	log  *logging.Logger
	dial Dialer

	// mu guards the process handle and the client cache.
	mu      sync.Mutex
	cmd     *exec.Cmd
	exited  chan struct{}
	clients map[string]Caller

	miningAddr string
}

// New creates a Regtest from cfg. A nil cfg uses DefaultConfig; zero
// fields of a non-nil cfg are filled from it.
//
// Example:
//
//	rt, err := regtest.New(nil)
//	if err != nil {
//	    return err
//	}
//	if err := rt.Start(ctx); err != nil {
//	    return err
//	}
//	defer rt.Stop()
func New(cfg *Config, opts ...Option) (*Regtest, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if _, _, err := net.SplitHostPort(cfg.Host); err != nil {
		return nil, fmt.Errorf("invalid rpc host %q: %w", cfg.Host, err)
	}

	r := &Regtest{
		cfg:     cfg.withDefaults(),
		dial:    dialRPC,
		clients: make(map[string]Caller),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = logging.Default().Component("regtest")
	}
	return r, nil
}

// Config returns a copy of the effective configuration.
func (r *Regtest) Config() Config {
	return *r.cfg
}

// args builds the bitcoind command line.
func (r *Regtest) args(dataDir string) ([]string, error) {
	_, portStr, err := net.SplitHostPort(r.cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("invalid rpc host %q: %w", r.cfg.Host, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid rpc port %q: %w", portStr, err)
	}

	args := []string{
		"-regtest",
		"-server",
		"-txindex=1",
		"-datadir=" + dataDir,
		"-rpcport=" + portStr,
		// P2P port is RPC port + 1.
		"-port=" + strconv.Itoa(port+1),
		"-rpcuser=" + r.cfg.User,
		"-rpcpassword=" + r.cfg.Pass,
		"-fallbackfee=" + strconv.FormatFloat(r.cfg.FallbackFee, 'f', -1, 64),
	}
	return append(args, r.cfg.ExtraArgs...), nil
}

// Start wipes the data directory, launches bitcoind and waits until it
// answers getblockcount or StartupTimeout elapses.
//
// Returns:
//   - error: if a node is already running, the process cannot be
//     spawned, or RPC never became ready
func (r *Regtest) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("bitcoind is already running")
	}

	dataDir, err := filepath.Abs(r.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve datadir: %w", err)
	}
	if err := os.RemoveAll(dataDir); err != nil {
		return fmt.Errorf("failed to clear datadir %s: %w", dataDir, err)
	}
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create datadir %s: %w", dataDir, err)
	}

	args, err := r.args(dataDir)
	if err != nil {
		return err
	}

	// #nosec G204 -- binary and arguments come from operator configuration
	cmd := exec.Command(r.cfg.Bitcoind, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", r.cfg.Bitcoind, err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	r.log.Info("started bitcoind", "pid", cmd.Process.Pid, "datadir", dataDir, "rpc", r.cfg.Host)

	if err := r.waitReady(ctx, exited); err != nil {
		_ = cmd.Process.Kill()
		<-exited
		r.closeClientsLocked()
		return err
	}

	r.cmd = cmd
	r.exited = exited
	return nil
}

func (r *Regtest) waitReady(ctx context.Context, exited <-chan struct{}) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.StartupTimeout)
	defer cancel()

	c, err := r.clientLocked("")
	if err != nil {
		return err
	}

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		if _, lastErr = c.RawRequest("getblockcount", nil); lastErr == nil {
			r.log.Debug("bitcoind rpc ready")
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("bitcoind rpc not ready: %w (last error: %v)", ctx.Err(), lastErr)
		case <-exited:
			return fmt.Errorf("bitcoind exited during startup (last error: %v)", lastErr)
		case <-ticker.C:
		}
	}
}

// Stop asks bitcoind to shut down and waits for the process to exit,
// killing it if it does not. Stop is a no-op when no node was started.
func (r *Regtest) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		r.closeClientsLocked()
		return nil
	}

	if c, err := r.clientLocked(""); err == nil {
		if _, err := c.RawRequest("stop", nil); err != nil {
			r.log.Warn("rpc stop failed", "err", err)
		}
	}

	var err error
	select {
	case <-r.exited:
	case <-time.After(15 * time.Second):
		r.log.Warn("bitcoind did not exit, killing", "pid", r.cmd.Process.Pid)
		if kerr := r.cmd.Process.Kill(); kerr != nil {
			err = fmt.Errorf("failed to kill bitcoind: %w", kerr)
		}
		<-r.exited
	}

	r.log.Info("stopped bitcoind")
	r.closeClientsLocked()
	r.cmd = nil
	r.exited = nil
	r.miningAddr = ""
	return err
}

// IsRunning reports whether the node answers RPC.
func (r *Regtest) IsRunning(ctx context.Context) bool {
	_, err := r.BlockCount(ctx)
	return err == nil
}

// Client returns the node-level RPC caller.
func (r *Regtest) Client() (Caller, error) {
	return r.client("")
}

func (r *Regtest) client(wallet string) (Caller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clientLocked(wallet)
}

func (r *Regtest) clientLocked(wallet string) (Caller, error) {
	if c, ok := r.clients[wallet]; ok {
		return c, nil
	}
	c, err := r.dial(r.cfg.connConfig(wallet))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", r.cfg.Host, err)
	}
	r.clients[wallet] = c
	return c, nil
}

func (r *Regtest) closeClientsLocked() {
	for name, c := range r.clients {
		c.Shutdown()
		delete(r.clients, name)
	}
}

// call sends method to the node, or to a wallet endpoint when wallet is
// not empty, and decodes the reply into result when result is non-nil.
func (r *Regtest) call(ctx context.Context, wallet, method string, result any, params ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	raw := make([]json.RawMessage, 0, len(params))
	for _, p := range params {
		b, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("%s: failed to encode param: %w", method, err)
		}
		raw = append(raw, b)
	}

	c, err := r.client(wallet)
	if err != nil {
		return err
	}
	reply, err := c.RawRequest(method, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(reply, result); err != nil {
		return fmt.Errorf("%s: failed to decode reply: %w", method, err)
	}
	return nil
}

// EnsureWallet creates wallet name, or loads it if it already exists on
// disk. A wallet that is already loaded is not an error.
func (r *Regtest) EnsureWallet(ctx context.Context, name string) error {
	err := r.call(ctx, "", "createwallet", nil, name)
	if err == nil {
		r.log.Debug("created wallet", "wallet", name)
		return nil
	}
	if !strings.Contains(err.Error(), "already exists") {
		return fmt.Errorf("failed to create wallet %s: %w", name, err)
	}

	err = r.call(ctx, "", "loadwallet", nil, name)
	if err == nil || strings.Contains(err.Error(), "already loaded") {
		r.log.Debug("loaded wallet", "wallet", name)
		return nil
	}
	return fmt.Errorf("failed to load wallet %s: %w", name, err)
}

// NewAddress returns a fresh bech32 receive address from wallet.
func (r *Regtest) NewAddress(ctx context.Context, wallet string) (string, error) {
	var addr string
	if err := r.call(ctx, wallet, "getnewaddress", &addr, "", "bech32"); err != nil {
		return "", fmt.Errorf("failed to get new address from %s: %w", wallet, err)
	}
	return addr, nil
}

// GenerateToAddress mines n blocks paying their reward to addr.
func (r *Regtest) GenerateToAddress(ctx context.Context, n int, addr string) ([]chainhash.Hash, error) {
	var ids []string
	if err := r.call(ctx, "", "generatetoaddress", &ids, n, addr); err != nil {
		return nil, fmt.Errorf("failed to mine %d blocks: %w", n, err)
	}

	hashes := make([]chainhash.Hash, 0, len(ids))
	for _, id := range ids {
		h, err := chainhash.NewHashFromStr(id)
		if err != nil {
			return nil, fmt.Errorf("invalid block hash %q: %w", id, err)
		}
		hashes = append(hashes, *h)
	}
	return hashes, nil
}

// BlockCount returns the current chain height.
func (r *Regtest) BlockCount(ctx context.Context) (int64, error) {
	var height int64
	if err := r.call(ctx, "", "getblockcount", &height); err != nil {
		return 0, err
	}
	return height, nil
}

// SendToAddress pays amount to addr from the configured wallet.
func (r *Regtest) SendToAddress(ctx context.Context, addr string, amount btcutil.Amount) (chainhash.Hash, error) {
	var id string
	if err := r.call(ctx, r.cfg.Wallet, "sendtoaddress", &id, addr, amount.ToBTC()); err != nil {
		return chainhash.Hash{}, fmt.Errorf("failed to send %v to %s: %w", amount, addr, err)
	}
	h, err := chainhash.NewHashFromStr(id)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("invalid txid %q: %w", id, err)
	}
	return *h, nil
}

// DecodedTransaction fetches txid and returns bitcoind's decoding of it.
func (r *Regtest) DecodedTransaction(ctx context.Context, txid chainhash.Hash) (*DecodedTx, error) {
	var rawHex string
	if err := r.call(ctx, "", "getrawtransaction", &rawHex, txid.String()); err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", txid, err)
	}

	var tx DecodedTx
	if err := r.call(ctx, "", "decoderawtransaction", &tx, rawHex); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", txid, err)
	}
	return &tx, nil
}
