package regtest

import (
	"fmt"
	"os"
	"time"

	"github.com/btcsuite/btcd/rpcclient"
	"gopkg.in/yaml.v3"
)

// Environment variable names read by ApplyEnvironment.
const (
	EnvRPCHost  = "BTCADDR_RPC_HOST"
	EnvRPCUser  = "BTCADDR_RPC_USER"
	EnvRPCPass  = "BTCADDR_RPC_PASS" // #nosec G101 -- variable name, not a credential
	EnvDataDir  = "BTCADDR_DATADIR"
	EnvBitcoind = "BTCADDR_BITCOIND"
)

// Config holds the settings for a regtest node and its RPC connection.
type Config struct {
	// Host is the RPC listen address, host:port.
	Host string `yaml:"host"`
	User string `yaml:"user"`
	Pass string `yaml:"pass"`

	// DataDir is wiped on Start.
	DataDir string `yaml:"datadir"`

	// Bitcoind is the daemon binary, looked up on PATH when not absolute.
	Bitcoind string `yaml:"bitcoind"`

	// FallbackFee is passed as -fallbackfee, in BTC/kvB.
	FallbackFee float64 `yaml:"fallback_fee"`

	// Wallet is the wallet Setup mines to and FundAddress spends from.
	Wallet string `yaml:"wallet"`

	ExtraArgs      []string      `yaml:"extra_args,omitempty"`
	StartupTimeout time.Duration `yaml:"startup_timeout"`
}

// DefaultConfig returns the default regtest configuration.
//
// Returns:
//   - *Config: RPC on 127.0.0.1:18443 with user/pass credentials, data in
//     ./bitcoind_regtest, mining wallet "mywallet", fallback fee 0.0002
func DefaultConfig() *Config {
	return &Config{
		Host:           "127.0.0.1:18443",
		User:           "user",
		Pass:           "pass",
		DataDir:        "./bitcoind_regtest",
		Bitcoind:       "bitcoind",
		FallbackFee:    0.0002,
		Wallet:         "mywallet",
		StartupTimeout: 30 * time.Second,
	}
}

// LoadConfig reads a YAML file layered over DefaultConfig. Keys missing
// from the file keep their default value.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- config file path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnvironment overrides cfg with any BTCADDR_* variables that are set.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvRPCHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvRPCUser); v != "" {
		cfg.User = v
	}
	if v := os.Getenv(EnvRPCPass); v != "" {
		cfg.Pass = v
	}
	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvBitcoind); v != "" {
		cfg.Bitcoind = v
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() *Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.User == "" {
		c.User = d.User
	}
	if c.Pass == "" {
		c.Pass = d.Pass
	}
	if c.DataDir == "" {
		c.DataDir = d.DataDir
	}
	if c.Bitcoind == "" {
		c.Bitcoind = d.Bitcoind
	}
	if c.FallbackFee == 0 {
		c.FallbackFee = d.FallbackFee
	}
	if c.Wallet == "" {
		c.Wallet = d.Wallet
	}
	if c.StartupTimeout == 0 {
		c.StartupTimeout = d.StartupTimeout
	}
	return &c
}

// connConfig returns the RPC connection config for the node endpoint, or
// for a wallet endpoint when wallet is not empty.
//
// Configuration details:
//   - HTTP POST mode enabled for JSON-RPC communication
//   - TLS disabled for local development
//   - no connection attempt until the first request
func (c *Config) connConfig(wallet string) *rpcclient.ConnConfig {
	host := c.Host
	if wallet != "" {
		host += "/wallet/" + wallet
	}
	return &rpcclient.ConnConfig{
		Host:                host,
		User:                c.User,
		Pass:                c.Pass,
		HTTPPostMode:        true,
		DisableTLS:          true,
		DisableConnectOnNew: true,
	}
}
