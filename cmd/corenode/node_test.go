package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagchain/corenode/txn"
)

func smallCommitteeConfig() Config {
	cfg := DefaultConfig()
	cfg.CommitteeSize = 2
	cfg.Threshold = 2
	cfg.MetricsAddr = "" // keep tests from binding a port
	cfg.BlockInterval = 10 * time.Millisecond
	return cfg
}

func TestNewNodeAppendsGenesis(t *testing.T) {
	n, err := NewNode(smallCommitteeConfig())
	require.NoError(t, err)
	defer n.Close()

	assert.Len(t, n.committee, 2)
	assert.Len(t, n.providers, 2)
	assert.NotEqual(t, [32]byte{}, n.dag.LastConfirmed())
}

func TestMineRoundProducesCertifiedConvergence(t *testing.T) {
	n, err := NewNode(smallCommitteeConfig())
	require.NoError(t, err)
	defer n.Close()

	before := n.dag.ConfirmedChain()

	n.mineRound()
	// buildAndCertifyConvergence runs on the worker pool; Close drains it.
	n.mailbox.Close()

	after := n.dag.ConfirmedChain()
	require.Len(t, after, len(before)+1)
	assert.NotEqual(t, before[len(before)-1], after[len(after)-1])
}

func TestSubmitTransactionQueuesForNextRound(t *testing.T) {
	n, err := NewNode(smallCommitteeConfig())
	require.NoError(t, err)
	defer n.Close()

	require.Equal(t, 0, n.mem.Len())

	n.SubmitTransaction(&txn.Txn{
		SenderAddress:   n.committee[0].Address,
		ReceiverAddress: n.committee[1].Address,
		Amount:          1,
		Nonce:           1,
		Token:           txn.Token{Name: "test"},
	})
	assert.Equal(t, 1, n.mem.Len())

	batch := n.mem.FetchTxns(10)
	assert.Equal(t, 1, batch.Len())
}
