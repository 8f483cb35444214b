package regtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/btcsuite/btcd/rpcclient"
)

// fakeNode is an in-memory stand-in for the bitcoind RPC surface used by
// Regtest.
type fakeNode struct {
	mu sync.Mutex

	height  int64
	onDisk  map[string]bool
	loaded  map[string]bool
	dials   map[string]int
	calls   []string
	sentTo  []string
	nextTx  int
	newAddr string

	// blocksPerCall overrides how far generatetoaddress advances the
	// chain per requested block; zero means one.
	blocksPerCall int64

	// outputs builds the vout list for a payment to addr.
	outputs func(addr string) []DecodedOutput
}

func newFakeNode(newAddr string) *fakeNode {
	return &fakeNode{
		onDisk:  make(map[string]bool),
		loaded:  make(map[string]bool),
		dials:   make(map[string]int),
		newAddr: newAddr,
	}
}

func (n *fakeNode) dialer() Dialer {
	return func(cfg *rpcclient.ConnConfig) (Caller, error) {
		n.mu.Lock()
		defer n.mu.Unlock()

		wallet := ""
		if i := strings.Index(cfg.Host, "/wallet/"); i >= 0 {
			wallet = cfg.Host[i+len("/wallet/"):]
		}
		n.dials[wallet]++
		return &fakeCaller{node: n, wallet: wallet}, nil
	}
}

func (n *fakeNode) called(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	count := 0
	for _, c := range n.calls {
		if c == method {
			count++
		}
	}
	return count
}

type fakeCaller struct {
	node   *fakeNode
	wallet string
}

func (c *fakeCaller) Shutdown() {}

func (c *fakeCaller) RawRequest(method string, params []json.RawMessage) (json.RawMessage, error) {
	n := c.node
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, method)

	str := func(i int) string {
		var s string
		_ = json.Unmarshal(params[i], &s)
		return s
	}

	switch method {
	case "getblockcount":
		return json.Marshal(n.height)

	case "createwallet":
		name := str(0)
		if n.onDisk[name] {
			return nil, errors.New("-4: Wallet file verification failed. Database already exists.")
		}
		n.onDisk[name] = true
		n.loaded[name] = true
		return json.Marshal(map[string]string{"name": name})

	case "loadwallet":
		name := str(0)
		if n.loaded[name] {
			return nil, fmt.Errorf("-35: Wallet %q is already loaded.", name)
		}
		n.loaded[name] = true
		return json.Marshal(map[string]string{"name": name})

	case "getnewaddress":
		if !n.loaded[c.wallet] {
			return nil, errors.New("-18: Requested wallet does not exist or is not loaded")
		}
		return json.Marshal(n.newAddr)

	case "generatetoaddress":
		var count int64
		_ = json.Unmarshal(params[0], &count)
		step := n.blocksPerCall
		if step == 0 {
			step = 1
		}
		hashes := make([]string, 0, count)
		for i := int64(0); i < count; i++ {
			n.height += step
			hashes = append(hashes, fmt.Sprintf("%064x", n.height))
		}
		return json.Marshal(hashes)

	case "sendtoaddress":
		if !n.loaded[c.wallet] {
			return nil, errors.New("-18: Requested wallet does not exist or is not loaded")
		}
		n.sentTo = append(n.sentTo, str(0))
		n.nextTx++
		return json.Marshal(fmt.Sprintf("%064x", 0xabc000+n.nextTx))

	case "getrawtransaction":
		return json.Marshal("02000000" + str(0))

	case "decoderawtransaction":
		txid := strings.TrimPrefix(str(0), "02000000")
		var vout []DecodedOutput
		if n.outputs != nil && len(n.sentTo) > 0 {
			vout = n.outputs(n.sentTo[len(n.sentTo)-1])
		}
		return json.Marshal(DecodedTx{TxID: txid, Vout: vout})

	case "stop":
		return json.Marshal("Bitcoin Core stopping")

	default:
		return nil, fmt.Errorf("-32601: Method not found: %s", method)
	}
}

func output(n uint32, addr, spkHex string) DecodedOutput {
	var o DecodedOutput
	o.N = n
	o.Value = 0.1
	o.ScriptPubKey.Address = addr
	o.ScriptPubKey.Hex = spkHex
	return o
}
