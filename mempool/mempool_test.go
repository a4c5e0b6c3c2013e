package mempool_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dagchain/corenode/mempool"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

func newTxn(nonce uint64) *txn.Txn {
	return &txn.Txn{
		SenderAddress:   thor.Address{byte(nonce)},
		ReceiverAddress: thor.Address{0xff},
		Amount:          1,
		Nonce:           nonce,
		Token:           txn.Token{Name: "test"},
	}
}

func TestPoolAddAndLen(t *testing.T) {
	p := mempool.New()
	assert.Equal(t, 0, p.Len())

	p.Add(newTxn(1))
	p.Add(newTxn(2))
	assert.Equal(t, 2, p.Len())
}

func TestPoolAddIsFirstWriterWinsOnRepeatedID(t *testing.T) {
	p := mempool.New()
	t1 := newTxn(1)
	p.Add(t1)
	p.Add(t1) // same content, same ID
	assert.Equal(t, 1, p.Len())
}

func TestPoolFetchTxnsRespectsBatchSize(t *testing.T) {
	p := mempool.New()
	for i := uint64(1); i <= 5; i++ {
		p.Add(newTxn(i))
	}

	batch := p.FetchTxns(3)
	assert.Equal(t, 3, batch.Len())
	// FetchTxns doesn't remove anything.
	assert.Equal(t, 5, p.Len())
}

func TestPoolFetchTxnsPreservesInsertionOrder(t *testing.T) {
	p := mempool.New()
	first := newTxn(1)
	second := newTxn(2)
	p.Add(first)
	p.Add(second)

	batch := p.FetchTxns(10)
	assert.Equal(t, []string{first.ID(), second.ID()}, batch.Keys())
}

func TestPoolRemove(t *testing.T) {
	p := mempool.New()
	t1 := newTxn(1)
	p.Add(t1)
	p.Remove(t1.ID())
	assert.Equal(t, 0, p.Len())
}
