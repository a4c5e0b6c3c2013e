package miner

import "github.com/dagchain/corenode/thor"

// Reward tiers and their ranges, carried over from the reward schedule of
// the system this core was distilled from (original_source reward.rs):
// coarser tiers are rarer and worth more, and each tier's supply decays
// toward zero by its own final epoch.
const (
	flakeMin, flakeMax           = 1, 8
	grainMin, grainMax           = 8, 64
	nuggetMin, nuggetMax         = 64, 512
	veinMin, veinMax             = 512, 4096
	motherlodeMin, motherlodeMax = 4096, 32769

	nuggetFinalEpoch     = 300
	veinFinalEpoch       = 200
	motherlodeFinalEpoch = 100

	blocksPerEpoch = 16_000_000

	totalNuggets     = 80_000_000
	totalVeins       = 1_400_000
	totalMotherlodes = 20_000
)

// RewardState tracks the decaying supply of each reward tier across epochs.
// Unlike the source this is distilled from, tier selection here is a pure
// function of the block seed rather than a thread-local RNG: every harvester
// computing next_block_reward over the same seed must agree on the result.
type RewardState struct {
	Epoch               uint64
	NuggetsRemaining    uint64
	VeinsRemaining      uint64
	MotherlodesRemaining uint64
}

// NewRewardState starts the schedule at epoch 1 with full tier supply.
func NewRewardState() RewardState {
	return RewardState{
		Epoch:                1,
		NuggetsRemaining:     totalNuggets,
		VeinsRemaining:       totalVeins,
		MotherlodesRemaining: totalMotherlodes,
	}
}

// NextReward derives the next block's reward amount deterministically from
// the election seed and the current schedule state, and returns the
// schedule advanced by one block (spec.md §4.2 step 7: "next_block_reward
// advanced by the reward rule").
func (rs RewardState) NextReward(seed thor.Seed, blockHeight uint64) (amount uint64, next RewardState) {
	next = rs
	if blockHeight > 0 && blockHeight%blocksPerEpoch == 0 {
		next.Epoch++
	}

	roll := seedRoll(seed, blockHeight)
	switch {
	case next.MotherlodesRemaining > 0 && next.Epoch <= motherlodeFinalEpoch && roll%5000 == 0:
		next.MotherlodesRemaining--
		return rangeAmount(seed, motherlodeMin, motherlodeMax), next
	case next.VeinsRemaining > 0 && next.Epoch <= veinFinalEpoch && roll%350 == 0:
		next.VeinsRemaining--
		return rangeAmount(seed, veinMin, veinMax), next
	case next.NuggetsRemaining > 0 && next.Epoch <= nuggetFinalEpoch && roll%20 == 0:
		next.NuggetsRemaining--
		return rangeAmount(seed, nuggetMin, nuggetMax), next
	case roll%2 == 0:
		return rangeAmount(seed, grainMin, grainMax), next
	default:
		return rangeAmount(seed, flakeMin, flakeMax), next
	}
}

// seedRoll derives a deterministic tier-selection scalar from the seed and
// block height.
func seedRoll(seed thor.Seed, blockHeight uint64) uint64 {
	b := seed.Bytes()
	var v uint64
	for _, x := range b {
		v = v*31 + uint64(x)
	}
	return v + blockHeight
}

// rangeAmount derives a deterministic amount within [min, max) from the seed.
func rangeAmount(seed thor.Seed, min, max uint64) uint64 {
	span := max - min
	if span == 0 {
		return min
	}
	return min + seedRoll(seed, 0)%span
}
