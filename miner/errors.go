package miner

import "github.com/pkg/errors"

// Sentinel errors for block-building failures (spec.md §4.2 "Failure modes",
// §7 "Block building").
var (
	ErrInvalidLastBlockKind = errors.New("miner: last block is neither genesis nor convergence")
	ErrNoPendingProposals   = errors.New("miner: no pending proposals to converge")
	ErrHeaderSignature      = errors.New("miner: header signature construction failed")
	ErrMissingSeed          = errors.New("miner: election seed is missing or zero")
)
