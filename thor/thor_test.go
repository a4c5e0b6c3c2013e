package thor_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/thor"
)

func TestBytes32RoundTripsThroughText(t *testing.T) {
	h := thor.Sum256([]byte("payload"))

	text, err := h.MarshalText()
	assert.NoError(t, err)

	var back thor.Bytes32
	assert.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, h, back)
}

func TestBytes32UnmarshalTextRejectsWrongLength(t *testing.T) {
	var h thor.Bytes32
	assert.Error(t, h.UnmarshalText([]byte("0xdead")))
}

func TestBytesToBytes32PadsAndTruncates(t *testing.T) {
	short := thor.BytesToBytes32([]byte{1, 2, 3})
	assert.True(t, short[29] == 1 && short[30] == 2 && short[31] == 3)
	assert.Equal(t, byte(0), short[0])

	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	truncated := thor.BytesToBytes32(long)
	assert.Equal(t, long[8:], truncated[:])
}

func TestBytes32IsZero(t *testing.T) {
	var zero thor.Bytes32
	assert.True(t, zero.IsZero())

	nonzero := thor.Sum256([]byte("x"))
	assert.False(t, nonzero.IsZero())
}

func TestAddressFromPublicKeyIsDeterministic(t *testing.T) {
	pub := []byte("a fake serialized public key")
	a1 := thor.AddressFromPublicKey(pub)
	a2 := thor.AddressFromPublicKey(pub)
	assert.Equal(t, a1, a2)
	assert.False(t, a1.IsZero())
}

func TestSeedIsZero(t *testing.T) {
	assert.True(t, thor.Seed{}.IsZero())
	assert.False(t, thor.NewSeed(1).IsZero())
}

func TestSeedFromBytesRoundTrips(t *testing.T) {
	s := thor.NewSeed(42)
	back := thor.SeedFromBytes(s.Bytes())
	assert.Equal(t, s.String(), back.String())
	assert.Equal(t, 0, new(big.Int).SetUint64(42).Cmp(back.BigInt()))
}
