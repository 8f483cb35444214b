/*
Package regtest runs a Bitcoin Core regtest node and funds addresses on it.

It is the integration counterpart of the address packages: derive an address
offline, then have a private chain pay to it and report the outpoint.

Quick Start

	rt, err := regtest.New(nil)
	if err != nil {
		log.Fatal(err)
	}
	defer rt.Stop()

	if err := rt.Start(ctx); err != nil {
		log.Fatal(err)
	}
	if err := rt.Setup(ctx); err != nil { // wallet + 101 blocks
		log.Fatal(err)
	}

	pub, _ := keys.PrivateToCompressedPublic(scalar)
	addr, _ := address.P2WPKH(pub, network.Regtest)

	op, err := rt.FundAddress(ctx, addr.String(), btcutil.Amount(100_000_000))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(op) // <txid>:<index>

# Configuration

Default settings:
  - RPC host: 127.0.0.1:18443
  - RPC user: user
  - RPC pass: pass
  - Data directory: ./bitcoind_regtest (wiped on Start)
  - Wallet: mywallet
  - Fallback fee: 0.0002 BTC/kvB

Settings can be loaded from YAML with LoadConfig and overridden from the
environment with ApplyEnvironment (BTCADDR_RPC_HOST, BTCADDR_RPC_USER,
BTCADDR_RPC_PASS, BTCADDR_DATADIR, BTCADDR_BITCOIND).

	host: 127.0.0.1:19000
	datadir: ./regtest_1
	wallet: miner
	startup_timeout: 45s

# Thread Safety

All Regtest methods are safe for concurrent use. Each wallet gets its own
RPC client on the /wallet/<name> endpoint; clients are created on first use
and closed by Stop.

# Port Considerations

The P2P port is set to the RPC port + 1, so instances running side by side
need RPC ports at least two apart and separate data directories.

# Prerequisites

bitcoind must be on PATH, or Config.Bitcoind must point at it:
  - macOS: brew install bitcoin
  - Ubuntu/Debian: sudo apt-get install bitcoind
  - Arch: sudo pacman -S bitcoin-core

NOT for production use.
*/
package regtest
