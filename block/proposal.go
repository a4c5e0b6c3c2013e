package block

import (
	"sync/atomic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// Proposal is a signed transaction batch pointing at a single parent block
// (spec.md §3 "Proposal").
type Proposal struct {
	RefBlock  thor.Bytes32
	Round     uint64
	Epoch     uint64
	Txns      *ordered.Map[string, *txn.Txn]
	Claims    *ordered.Map[thor.Bytes32, *claim.Claim]
	From      *claim.Claim
	Signature []byte

	cache struct {
		hash atomic.Value
	}
}

// NewProposal builds an unsigned proposal block body over ref, the miner's
// current leaf.
func NewProposal(ref thor.Bytes32, round, epoch uint64, txns *ordered.Map[string, *txn.Txn], claims *ordered.Map[thor.Bytes32, *claim.Claim], from *claim.Claim) *Proposal {
	return &Proposal{
		RefBlock: ref,
		Round:    round,
		Epoch:    epoch,
		Txns:     txns,
		Claims:   claims,
		From:     from,
	}
}

type proposalPayload struct {
	Round     uint64
	Epoch     uint64
	TxnIDs    []string
	ClaimHash []thor.Bytes32
	From      thor.Bytes32
}

func (p *Proposal) payload() proposalPayload {
	var fromHash thor.Bytes32
	if p.From != nil {
		fromHash = p.From.Hash
	}
	pp := proposalPayload{Round: p.Round, Epoch: p.Epoch, From: fromHash}
	p.Txns.Each(func(id string, _ *txn.Txn) { pp.TxnIDs = append(pp.TxnIDs, id) })
	p.Claims.Each(func(h thor.Bytes32, _ *claim.Claim) { pp.ClaimHash = append(pp.ClaimHash, h) })
	return pp
}

// SigningHash is the SHA-256 digest of (round, epoch, txns, claims, from) in
// insertion order, per spec.md §4.2.
func (p *Proposal) SigningHash() thor.Bytes32 {
	hw := thor.NewSHA256()
	rlp.Encode(hw, p.payload())
	var out thor.Bytes32
	hw.Sum(out[:0])
	return out
}

// Sign signs the proposal's signing hash with the proposer's secp256k1 key
// and stores the DER-encoded signature.
func (p *Proposal) Sign(priv *secp256k1.PrivateKey) error {
	digest := p.SigningHash()
	sig := ecdsa.Sign(priv, digest[:])
	p.Signature = sig.Serialize()
	p.cache.hash.Store(thor.Bytes32{})
	return nil
}

// VerifySignature checks the proposer's signature against the claim's public key.
func (p *Proposal) VerifySignature() error {
	if p.From == nil {
		return errors.New("block: proposal has no proposer claim")
	}
	pub, err := secp256k1.ParsePubKey(p.From.PublicKey)
	if err != nil {
		return errors.Wrap(err, "block: invalid proposer public key")
	}
	sig, err := ecdsa.ParseDERSignature(p.Signature)
	if err != nil {
		return errors.Wrap(err, "block: invalid proposal signature encoding")
	}
	digest := p.SigningHash()
	if !sig.Verify(digest[:], pub) {
		return errors.New("block: proposal signature verification failed")
	}
	return nil
}

// Hash is the block's content hash: SHA-256 of
// (round, epoch, txns, claims, from, signature), per spec.md §4.2.
func (p *Proposal) Hash() thor.Bytes32 {
	if cached, ok := p.cache.hash.Load().(thor.Bytes32); ok && !cached.IsZero() {
		return cached
	}
	hw := thor.NewSHA256()
	pp := p.payload()
	rlp.Encode(hw, struct {
		proposalPayload
		Signature []byte
	}{pp, p.Signature})
	var out thor.Bytes32
	hw.Sum(out[:0])
	p.cache.hash.Store(out)
	return out
}

// References returns the single parent this proposal points at.
func (p *Proposal) References() []thor.Bytes32 { return []thor.Bytes32{p.RefBlock} }

// IsCurrentRound reports whether this proposal's parent is the given
// last-round block, i.e. it is not orphaned (spec.md §4.2 step 1).
func (p *Proposal) IsCurrentRound(lastBlock thor.Bytes32) bool {
	return p.RefBlock == lastBlock
}
