// Package miner builds proposal and convergence blocks and runs the
// deterministic conflict-resolution protocol between competing proposals
// (spec.md §4.2).
package miner

import (
	"sort"
	"time"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// EpochBlockInterval is the block-height modulus at which the epoch
// advances (spec.md §4.2 step 7: "epoch incremented if height % EPOCH_BLOCK
// == 0").
const EpochBlockInterval = 100

// ChainReader is the subset of the DAG Store the miner needs: scanning the
// confirmed convergence chain for already-finalized transactions.
type ChainReader interface {
	Between(from, to thor.Bytes32) ([]*block.Convergence, error)
}

// BuildProposal assembles and signs a proposal block over ref (the miner's
// current leaf), per spec.md §4.2 "Build a proposal block".
func BuildProposal(
	priv *secp256k1.PrivateKey,
	ref thor.Bytes32,
	round, epoch uint64,
	txns *ordered.Map[string, *txn.Txn],
	claims *ordered.Map[thor.Bytes32, *claim.Claim],
	from *claim.Claim,
) (*block.Proposal, error) {
	p := block.NewProposal(ref, round, epoch, txns, claims, from)
	if err := p.Sign(priv); err != nil {
		return nil, errors.Wrap(ErrHeaderSignature, err.Error())
	}
	return p, nil
}

// LastBlock is the subset of Genesis/Convergence fields the convergence
// builder needs from the miner's current leaf.
type LastBlock struct {
	Hash            thor.Bytes32
	Kind            block.Kind
	Height          uint64
	Round           uint64
	Epoch           uint64
	NextBlockSeed   thor.Seed
	BlockReward     uint64
	RewardState     RewardState
}

// BuildConvergence runs the full conflict-resolution protocol and assembles
// a signed convergence block (spec.md §4.2 "Build a convergence block").
// proposals is every unreferenced proposal pointing, directly or through an
// orphaned ancestor, at last.Hash; chain resolves earlier-round orphans
// against the confirmed convergence history.
func BuildConvergence(
	priv *secp256k1.PrivateKey,
	chain ChainReader,
	last LastBlock,
	proposals []*block.Proposal,
	miner *claim.Claim,
) (*block.Convergence, RewardState, error) {
	var zeroReward RewardState

	if last.Kind != block.KindGenesis && last.Kind != block.KindConvergence {
		return nil, zeroReward, ErrInvalidLastBlockKind
	}
	if len(proposals) == 0 {
		return nil, zeroReward, ErrNoPendingProposals
	}
	if last.NextBlockSeed.IsZero() {
		return nil, zeroReward, ErrMissingSeed
	}

	current, orphans := splitByRound(proposals, last.Hash)

	resolvedOrphans, err := resolveOrphans(chain, orphans, last.Hash)
	if err != nil {
		return nil, zeroReward, err
	}
	all := append(current, resolvedOrphans...)

	winners, err := resolveConflicts(all, last.NextBlockSeed)
	if err != nil {
		return nil, zeroReward, err
	}

	txnsByProposal, claimsByProposal := consolidate(all, winners)

	height := last.Height + 1
	round := last.Round + 1
	epoch := last.Epoch
	if height%EpochBlockInterval == 0 {
		epoch++
	}

	nextSeed := deriveNextSeed(priv, last.NextBlockSeed)
	reward, nextRewardState := last.RewardState.NextReward(nextSeed, height)

	refHashes := make([]thor.Bytes32, 0, len(all))
	for _, p := range all {
		refHashes = append(refHashes, p.Hash())
	}

	c := &block.Convergence{
		Header: block.Header{
			Round:           round,
			Epoch:           epoch,
			BlockHeight:     height,
			Timestamp:       uint64(time.Now().Unix()),
			BlockSeed:       last.NextBlockSeed,
			NextBlockSeed:   nextSeed,
			RefHashes:       refHashes,
			TxHash:          block.HashTxns(txnsByProposal),
			ClaimListHash:   block.HashClaims(claimsByProposal),
			MinerClaim:      miner,
			BlockReward:     last.BlockReward,
			NextBlockReward: reward,
		},
		Txns:   txnsByProposal,
		Claims: claimsByProposal,
	}
	if err := c.Sign(priv); err != nil {
		return nil, zeroReward, errors.Wrap(ErrHeaderSignature, err.Error())
	}
	return c, nextRewardState, nil
}

// splitByRound implements step 1: proposals whose parent is last_block are
// current-round; everything else is an earlier-round orphan.
func splitByRound(proposals []*block.Proposal, last thor.Bytes32) (current, orphans []*block.Proposal) {
	for _, p := range proposals {
		if p.IsCurrentRound(last) {
			current = append(current, p)
		} else {
			orphans = append(orphans, p)
		}
	}
	return
}

// resolveOrphans implements step 2: for each orphan, remove every txn id
// already finalized by a confirmed convergence block between the orphan's
// parent and last_block.
func resolveOrphans(chain ChainReader, orphans []*block.Proposal, last thor.Bytes32) ([]*block.Proposal, error) {
	out := make([]*block.Proposal, 0, len(orphans))
	for _, p := range orphans {
		confirmed, err := chain.Between(p.RefBlock, last)
		if err != nil {
			return nil, errors.Wrap(err, "miner: resolving orphan ancestry")
		}
		finalized := make(map[string]bool)
		for _, c := range confirmed {
			c.Txns.Each(func(_ thor.Bytes32, ids *ordered.Set[string]) {
				for _, id := range ids.Items() {
					finalized[id] = true
				}
			})
		}
		pruned := ordered.NewMap[string, *txn.Txn]()
		p.Txns.Each(func(id string, t *txn.Txn) {
			if !finalized[id] {
				pruned.Set(id, t)
			}
		})
		p.Txns = pruned
		out = append(out, p)
	}
	return out, nil
}

type conflictEntry struct {
	proposer *claim.Claim
	proposal *block.Proposal
}

// resolveConflicts implements steps 3-5: build the conflict map, elect a
// winner per disputed txn id by minimal pointer sum, and return the set of
// (proposalHash, txnID) pairs each proposal may keep.
func resolveConflicts(proposals []*block.Proposal, seed thor.Seed) (map[thor.Bytes32]map[string]bool, error) {
	conflicts := make(map[string][]conflictEntry)
	for _, p := range proposals {
		p.Txns.Each(func(id string, _ *txn.Txn) {
			conflicts[id] = append(conflicts[id], conflictEntry{proposer: p.From, proposal: p})
		})
	}

	seedU64 := seed.BigInt().Uint64()

	// retained[proposalHash][txnID] == true means this proposal keeps this txn.
	retained := make(map[thor.Bytes32]map[string]bool)
	for _, p := range proposals {
		retained[p.Hash()] = make(map[string]bool)
		p.Txns.Each(func(id string, _ *txn.Txn) { retained[p.Hash()][id] = true })
	}

	for id, entries := range conflicts {
		distinctProposers := make(map[thor.Bytes32]bool)
		for _, e := range entries {
			distinctProposers[e.proposer.Hash] = true
		}
		if len(distinctProposers) < 2 {
			continue // not actually in conflict
		}

		sort.Slice(entries, func(i, j int) bool {
			pi := entries[i].proposer.GetPointer(seedU64)
			pj := entries[j].proposer.GetPointer(seedU64)
			if cmp := claim.ComparePointers(pi, pj); cmp != 0 {
				return cmp < 0
			}
			return entries[i].proposer.Hash.String() < entries[j].proposer.Hash.String()
		})
		winner := entries[0]
		for _, e := range entries {
			if e.proposal.Hash() != winner.proposal.Hash() {
				delete(retained[e.proposal.Hash()], id)
			}
		}
	}
	return retained, nil
}

// consolidate implements step 6: build the convergence block's consolidated
// txn and claim maps from the retained-after-resolution set.
func consolidate(proposals []*block.Proposal, retained map[thor.Bytes32]map[string]bool) (*block.TxnsByProposal, *block.ClaimsByProposal) {
	txnsByProposal := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	claimsByProposal := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()

	for _, p := range proposals {
		h := p.Hash()
		keep := retained[h]

		ids := ordered.NewSet[string]()
		p.Txns.Each(func(id string, _ *txn.Txn) {
			if keep[id] {
				ids.Add(id)
			}
		})
		if ids.Len() > 0 {
			txnsByProposal.Set(h, ids)
		}

		hashes := ordered.NewSet[thor.Bytes32]()
		p.Claims.Each(func(ch thor.Bytes32, _ *claim.Claim) { hashes.Add(ch) })
		if hashes.Len() > 0 {
			claimsByProposal.Set(h, hashes)
		}
	}
	return txnsByProposal, claimsByProposal
}

// deriveNextSeed signs the current seed with the builder's key and folds the
// signature into a new 128-bit seed, giving every block a pseudo-random but
// verifiable successor (spec.md §3 "Block Header": "next-block seed
// (pseudo-random, derived from signing the previous seed)").
func deriveNextSeed(priv *secp256k1.PrivateKey, current thor.Seed) thor.Seed {
	digest := thor.Sum256(current.Bytes())
	sig := ecdsa.Sign(priv, digest[:])
	return thor.SeedFromBytes(sig.Serialize())
}
