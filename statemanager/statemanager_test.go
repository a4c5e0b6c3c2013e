package statemanager_test

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagchain/corenode/account"
	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/muxdb/engine"
	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/statemanager"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

func newTestAccountStore(t *testing.T) *account.Store {
	t.Helper()
	e, err := engine.NewMemEngine()
	require.NoError(t, err)
	s, err := account.New(e, thor.Bytes32{})
	require.NoError(t, err)
	return s
}

func newTestClaim(t *testing.T, addrSeed string) *claim.Claim {
	t.Helper()
	priv, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	addr := thor.BytesToAddress([]byte(addrSeed))
	c, err := claim.New(priv, addr, "127.0.0.1:1317", addrSeed)
	require.NoError(t, err)
	return c
}

// fakeSources hands back a fixed set of proposals regardless of the
// convergence block passed in, standing in for the DAG store.
type fakeSources struct {
	proposals []*block.Proposal
}

func (f fakeSources) GetSources(block.Block) ([]block.Block, error) {
	out := make([]block.Block, len(f.proposals))
	for i, p := range f.proposals {
		out[i] = p
	}
	return out, nil
}

func certifiedConvergence(t *testing.T, txns *block.TxnsByProposal, claims *block.ClaimsByProposal) *block.Convergence {
	t.Helper()
	return &block.Convergence{
		Header:      block.Header{},
		Txns:        txns,
		Claims:      claims,
		Certificate: &block.Certificate{Signature: make([]byte, block.SignatureSize)},
	}
}

func TestApplyRejectsUncertifiedBlock(t *testing.T) {
	m := statemanager.New(fakeSources{}, newTestAccountStore(t), statemanager.NewTxnStore(), statemanager.NewClaimStore())
	c := &block.Convergence{Header: block.Header{}, Txns: ordered.NewMap[thor.Bytes32, *ordered.Set[string]](), Claims: ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()}

	_, _, err := m.Apply(c)
	assert.ErrorIs(t, err, statemanager.ErrNotConvergence)
}

func TestApplyCreditsReceiverAndDebitsSender(t *testing.T) {
	proposer := newTestClaim(t, "proposer")
	sender := thor.BytesToAddress([]byte("sender"))
	receiver := thor.BytesToAddress([]byte("receiver"))

	tx := &txn.Txn{
		SenderAddress:   sender,
		ReceiverAddress: receiver,
		Amount:          100,
		Nonce:           1,
		Fees:            txn.FeeShares{ProposerShare: 5, ValidatorShare: 0},
	}

	txns := ordered.NewMap[string, *txn.Txn]()
	txns.Set(tx.ID(), tx)
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()

	p := block.NewProposal(thor.Bytes32{}, 1, 0, txns, claims, proposer)

	retained := ordered.NewSet[string]()
	retained.Add(tx.ID())
	convTxns := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	convTxns.Set(p.Hash(), retained)
	convClaims := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()

	conv := certifiedConvergence(t, convTxns, convClaims)

	acctStore := newTestAccountStore(t)
	m := statemanager.New(fakeSources{proposals: []*block.Proposal{p}}, acctStore, statemanager.NewTxnStore(), statemanager.NewClaimStore())

	root, applyErrs, err := m.Apply(conv)
	require.NoError(t, err)
	for _, e := range applyErrs {
		assert.NoError(t, e)
	}
	assert.NotEqual(t, thor.Bytes32{}, root)

	senderAcc, err := acctStore.Get(sender)
	require.NoError(t, err)
	assert.Equal(t, uint64(105), senderAcc.Debits)
	assert.Equal(t, uint64(1), senderAcc.Nonce)

	receiverAcc, err := acctStore.Get(receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), receiverAcc.Credits)

	proposerAcc, err := acctStore.Get(proposer.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), proposerAcc.Credits)
}

func TestApplyCreditsAffirmingValidators(t *testing.T) {
	proposer := newTestClaim(t, "proposer2")
	sender := thor.BytesToAddress([]byte("sender2"))
	receiver := thor.BytesToAddress([]byte("receiver2"))
	validator := thor.BytesToAddress([]byte("validator"))

	tx := &txn.Txn{
		SenderAddress:   sender,
		ReceiverAddress: receiver,
		Amount:          10,
		Fees:            txn.FeeShares{ValidatorShare: 9},
		ValidatorVotes:  map[thor.Address]bool{validator: true},
	}

	txns := ordered.NewMap[string, *txn.Txn]()
	txns.Set(tx.ID(), tx)
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()
	p := block.NewProposal(thor.Bytes32{}, 1, 0, txns, claims, proposer)

	retained := ordered.NewSet[string]()
	retained.Add(tx.ID())
	convTxns := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	convTxns.Set(p.Hash(), retained)
	convClaims := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()
	conv := certifiedConvergence(t, convTxns, convClaims)

	acctStore := newTestAccountStore(t)
	m := statemanager.New(fakeSources{proposals: []*block.Proposal{p}}, acctStore, statemanager.NewTxnStore(), statemanager.NewClaimStore())

	_, applyErrs, err := m.Apply(conv)
	require.NoError(t, err)
	for _, e := range applyErrs {
		assert.NoError(t, e)
	}

	validatorAcc, err := acctStore.Get(validator)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), validatorAcc.Credits)
}

func TestApplyDropsUnretainedTxns(t *testing.T) {
	proposer := newTestClaim(t, "proposer3")
	sender := thor.BytesToAddress([]byte("sender3"))
	receiver := thor.BytesToAddress([]byte("receiver3"))

	winner := &txn.Txn{SenderAddress: sender, ReceiverAddress: receiver, Amount: 1}
	loser := &txn.Txn{SenderAddress: sender, ReceiverAddress: receiver, Amount: 999, Nonce: 7}

	txns := ordered.NewMap[string, *txn.Txn]()
	txns.Set(winner.ID(), winner)
	txns.Set(loser.ID(), loser)
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()
	p := block.NewProposal(thor.Bytes32{}, 1, 0, txns, claims, proposer)

	retained := ordered.NewSet[string]()
	retained.Add(winner.ID()) // loser's id deliberately excluded
	convTxns := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	convTxns.Set(p.Hash(), retained)
	convClaims := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()
	conv := certifiedConvergence(t, convTxns, convClaims)

	acctStore := newTestAccountStore(t)
	txnStore := statemanager.NewTxnStore()
	m := statemanager.New(fakeSources{proposals: []*block.Proposal{p}}, acctStore, txnStore, statemanager.NewClaimStore())

	_, _, err := m.Apply(conv)
	require.NoError(t, err)

	receiverAcc, err := acctStore.Get(receiver)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receiverAcc.Credits, "only the retained txn's amount should be reflected")
	assert.Equal(t, 1, txnStore.Len())
	_, ok := txnStore.Get(loser.ID())
	assert.False(t, ok, "the conflict loser must never reach the txn store")
}

func TestApplyExtendsClaimStore(t *testing.T) {
	proposer := newTestClaim(t, "proposer4")
	extra := newTestClaim(t, "extra")

	txns := ordered.NewMap[string, *txn.Txn]()
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()
	claims.Set(extra.Hash, extra)
	p := block.NewProposal(thor.Bytes32{}, 1, 0, txns, claims, proposer)

	retainedClaims := ordered.NewSet[thor.Bytes32]()
	retainedClaims.Add(extra.Hash)
	convTxns := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	convClaims := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()
	convClaims.Set(p.Hash(), retainedClaims)
	conv := certifiedConvergence(t, convTxns, convClaims)

	claimStore := statemanager.NewClaimStore()
	m := statemanager.New(fakeSources{proposals: []*block.Proposal{p}}, newTestAccountStore(t), statemanager.NewTxnStore(), claimStore)

	_, _, err := m.Apply(conv)
	require.NoError(t, err)
	assert.Equal(t, 1, claimStore.Len())
	_, ok := claimStore.Get(extra.Hash)
	assert.True(t, ok)
}

func TestApplyIsIdempotentOnTxnAndClaimStores(t *testing.T) {
	proposer := newTestClaim(t, "proposer5")
	sender := thor.BytesToAddress([]byte("sender5"))
	receiver := thor.BytesToAddress([]byte("receiver5"))
	tx := &txn.Txn{SenderAddress: sender, ReceiverAddress: receiver, Amount: 3}

	txns := ordered.NewMap[string, *txn.Txn]()
	txns.Set(tx.ID(), tx)
	claims := ordered.NewMap[thor.Bytes32, *claim.Claim]()
	p := block.NewProposal(thor.Bytes32{}, 1, 0, txns, claims, proposer)

	retained := ordered.NewSet[string]()
	retained.Add(tx.ID())
	convTxns := ordered.NewMap[thor.Bytes32, *ordered.Set[string]]()
	convTxns.Set(p.Hash(), retained)
	convClaims := ordered.NewMap[thor.Bytes32, *ordered.Set[thor.Bytes32]]()
	conv := certifiedConvergence(t, convTxns, convClaims)

	txnStore := statemanager.NewTxnStore()
	m := statemanager.New(fakeSources{proposals: []*block.Proposal{p}}, newTestAccountStore(t), txnStore, statemanager.NewClaimStore())

	_, _, err := m.Apply(conv)
	require.NoError(t, err)
	_, _, err = m.Apply(conv)
	require.NoError(t, err)

	assert.Equal(t, 1, txnStore.Len(), "replaying the same convergence block must not duplicate store entries")
}
