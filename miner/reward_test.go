package miner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/thor"
)

func TestNewRewardStateStartsAtEpochOneWithFullSupply(t *testing.T) {
	rs := NewRewardState()
	assert.Equal(t, uint64(1), rs.Epoch)
	assert.Equal(t, uint64(totalNuggets), rs.NuggetsRemaining)
	assert.Equal(t, uint64(totalVeins), rs.VeinsRemaining)
	assert.Equal(t, uint64(totalMotherlodes), rs.MotherlodesRemaining)
}

func TestNextRewardIsDeterministicOverSameSeedAndHeight(t *testing.T) {
	rs := NewRewardState()
	seed := thor.NewSeed(12345)

	a1, next1 := rs.NextReward(seed, 10)
	a2, next2 := rs.NextReward(seed, 10)

	assert.Equal(t, a1, a2)
	assert.Equal(t, next1, next2)
}

func TestNextRewardAdvancesEpochOnBoundary(t *testing.T) {
	rs := NewRewardState()
	seed := thor.NewSeed(1)

	_, next := rs.NextReward(seed, blocksPerEpoch)
	assert.Equal(t, uint64(2), next.Epoch)
}

func TestNextRewardNeverAdvancesEpochMidEpoch(t *testing.T) {
	rs := NewRewardState()
	seed := thor.NewSeed(7)

	_, next := rs.NextReward(seed, blocksPerEpoch-1)
	assert.Equal(t, uint64(1), next.Epoch)
}

func TestNextRewardAmountIsWithinFlakeRangeByDefault(t *testing.T) {
	// A seed/height combination whose roll is odd and not a multiple of any
	// coarser tier's divisor falls through to the flake tier.
	rs := RewardState{Epoch: 1}
	seed := thor.NewSeed(3)

	amount, _ := rs.NextReward(seed, 2)
	assert.GreaterOrEqual(t, amount, uint64(flakeMin))
	assert.Less(t, amount, uint64(flakeMax))
}

func TestNextRewardExhaustedTierIsSkipped(t *testing.T) {
	rs := RewardState{Epoch: 1, MotherlodesRemaining: 0, VeinsRemaining: 0, NuggetsRemaining: 0}
	seed := thor.NewSeed(5000) // with height 4275 the roll is 725+4275 = 5000, which would hit motherlode if supply remained

	_, next := rs.NextReward(seed, 4275)
	assert.Equal(t, uint64(0), next.MotherlodesRemaining)
	assert.Equal(t, uint64(0), next.VeinsRemaining)
	assert.Equal(t, uint64(0), next.NuggetsRemaining)
}

func TestNextRewardPastFinalEpochFallsThroughTier(t *testing.T) {
	rs := RewardState{Epoch: motherlodeFinalEpoch + 1, MotherlodesRemaining: totalMotherlodes}
	seed := thor.NewSeed(5000)

	amount, next := rs.NextReward(seed, 4275)
	assert.Equal(t, uint64(totalMotherlodes), next.MotherlodesRemaining) // untouched, tier closed by epoch
	assert.Less(t, amount, uint64(motherlodeMax))
}
