package block

import (
	"sync/atomic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
)

// TxnsByProposal maps a proposal's hash to the ordered set of txn ids it
// contributes to a convergence block (spec.md §3 "Convergence": "consolidated
// txn map proposal_hash -> ordered set of txn_id").
type TxnsByProposal = ordered.Map[thor.Bytes32, *ordered.Set[string]]

// ClaimsByProposal maps a proposal's hash to the ordered set of claim hashes
// it contributes.
type ClaimsByProposal = ordered.Map[thor.Bytes32, *ordered.Set[thor.Bytes32]]

// Convergence is a block that references one or more proposal blocks and,
// once certified, finalizes their transactions (spec.md §3 "Convergence",
// GLOSSARY).
type Convergence struct {
	Header      Header
	Txns        *TxnsByProposal
	Claims      *ClaimsByProposal
	Certificate *Certificate

	cache struct {
		hash atomic.Value
	}
}

// Hash is the block's content hash over the header payload.
func (c *Convergence) Hash() thor.Bytes32 {
	if cached, ok := c.cache.hash.Load().(thor.Bytes32); ok && !cached.IsZero() {
		return cached
	}
	out := c.Header.SigningHash()
	c.cache.hash.Store(out)
	return out
}

// Sign signs the header payload with the harvester/miner's secp256k1 key.
func (c *Convergence) Sign(priv *secp256k1.PrivateKey) error {
	digest := c.Header.SigningHash()
	sig := ecdsa.Sign(priv, digest[:])
	c.Header.Signature = sig.Serialize()
	c.cache.hash.Store(thor.Bytes32{})
	return nil
}

// VerifySignature checks the miner's signature over the header payload
// against the header's MinerClaim public key.
func (c *Convergence) VerifySignature() error {
	if c.Header.MinerClaim == nil {
		return errors.New("block: convergence block has no miner claim")
	}
	pub, err := secp256k1.ParsePubKey(c.Header.MinerClaim.PublicKey)
	if err != nil {
		return errors.Wrap(err, "block: invalid miner public key")
	}
	sig, err := ecdsa.ParseDERSignature(c.Header.Signature)
	if err != nil {
		return errors.Wrap(err, "block: invalid convergence signature encoding")
	}
	digest := c.Header.SigningHash()
	if !sig.Verify(digest[:], pub) {
		return errors.New("block: convergence block signature verification failed")
	}
	return nil
}

// References returns every proposal hash this convergence block names.
func (c *Convergence) References() []thor.Bytes32 { return c.Header.RefHashes }

// IsCertified reports whether a quorum certificate has been attached.
func (c *Convergence) IsCertified() bool { return c.Certificate.Valid() }

// HashTxns computes the SHA-256 of the consolidated txn map, used to
// populate Header.TxHash (spec.md §4.2 step 7).
func HashTxns(m *TxnsByProposal) thor.Bytes32 {
	hw := thor.NewSHA256()
	m.Each(func(proposalHash thor.Bytes32, ids *ordered.Set[string]) {
		rlp.Encode(hw, proposalHash)
		for _, id := range ids.Items() {
			rlp.Encode(hw, id)
		}
	})
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}

// HashClaims computes the SHA-256 of the consolidated claim map, used to
// populate Header.ClaimListHash (spec.md §4.2 step 7).
func HashClaims(m *ClaimsByProposal) thor.Bytes32 {
	hw := thor.NewSHA256()
	m.Each(func(proposalHash thor.Bytes32, hashes *ordered.Set[thor.Bytes32]) {
		rlp.Encode(hw, proposalHash)
		for _, h := range hashes.Items() {
			rlp.Encode(hw, h)
		}
	})
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}
