package block

import "github.com/dagchain/corenode/thor"

// SignatureSize is the fixed size of every partial/threshold/chain-lock
// signature (spec.md §6, §8 "Signature size"). BLS-style signatures over
// BLS12-381 G2 serialize to 96 bytes compressed; public keys and key shares
// live on G1 at 48 bytes, matching drand's "pedersen-bls-chained" scheme.
const SignatureSize = 96

// Certificate carries a block's quorum signature and the state-trie roots it
// binds into the chain (spec.md §3 "Certificate"). Attaching a certificate
// to a convergence block promotes it from pending to confirmed.
type Certificate struct {
	Signature              []byte
	QuorumPubkeyInaugurate map[uint16][]byte // optional: new quorum pubkey shares on rotation
	CurrentRoot            thor.Bytes32
	NextRoot               thor.Bytes32
}

// Valid reports whether the certificate's signature has the fixed size
// required by the wire format.
func (c *Certificate) Valid() bool {
	return c != nil && len(c.Signature) == SignatureSize
}
