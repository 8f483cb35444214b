// Package address assembles standard Bitcoin addresses from public keys and
// scripts.
//
// Legacy forms (P2PKH, P2SH, P2SH-P2WPKH) are Base58Check strings; native
// segwit forms (P2WPKH, P2WSH and higher witness versions) are Bech32 or
// Bech32m strings. Every constructor takes the target network explicitly
// and fails with addrerr.ErrUnknownNetwork for a tag outside
// network.All().
//
// Example:
//
//	pub, _ := keys.PrivateToCompressedPublic(scalar)
//	addr, err := address.P2WPKH(pub, network.Mainnet)
//	if err != nil {
//		return err
//	}
//	fmt.Println(addr) // bc1q...
package address
