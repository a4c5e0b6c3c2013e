package genesis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/genesis"
	"github.com/dagchain/corenode/thor"
)

func TestDevAccounts(t *testing.T) {
	accounts := genesis.DevAccounts()

	assert.Equal(t, 10, len(accounts), "expected 10 dev accounts")

	for _, a := range accounts {
		assert.NotNil(t, a.PrivateKey)
		assert.NotEqual(t, thor.Address{}, a.Address)
		assert.True(t, a.Claim.Verify(), "dev claim self-signature should verify")
	}
}

func TestNewDevnet(t *testing.T) {
	g := genesis.NewDevnet(1700000000)

	assert.NotNil(t, g)
	assert.NotEqual(t, thor.Bytes32{}, g.Hash())
	assert.Equal(t, 10, g.Claims.Len())
	assert.Nil(t, g.References())
}

func TestNewDevnetCustomTimestamp(t *testing.T) {
	ts := uint64(1600000000)
	g := genesis.NewDevnet(ts)

	assert.Equal(t, ts, g.Header.Timestamp)
}
