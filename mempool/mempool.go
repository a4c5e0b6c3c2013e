// Package mempool is the pull-based validated-transaction source the miner
// drains when building proposal blocks. The real left-right concurrent
// pending-transaction structure is out of scope (spec.md §1): this package
// is the thin, internal fetch_txns collaborator the core consumes instead,
// built around a mutex-guarded ordered map rather than the teacher's own
// (more elaborate) tx pool, which talks to wire-level gossip this core does
// not own.
package mempool

import (
	"sync"

	"github.com/dagchain/corenode/ordered"
	"github.com/dagchain/corenode/txn"
)

// Pool holds validated transactions awaiting inclusion in a proposal block.
type Pool struct {
	mu  sync.Mutex
	txs *ordered.Map[string, *txn.Txn]
}

// New creates an empty pool.
func New() *Pool {
	return &Pool{txs: ordered.NewMap[string, *txn.Txn]()}
}

// Add inserts a validated transaction, first-writer-wins on a repeated id.
func (p *Pool) Add(t *txn.Txn) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs.SetIfAbsent(t.ID(), t)
}

// Remove drops a transaction, e.g. once it has been subsumed by a confirmed
// convergence block.
func (p *Pool) Remove(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txs.Delete(id)
}

// Len reports the number of pending transactions.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.txs.Len()
}

// FetchTxns returns up to batchSize pending transactions in insertion order,
// without removing them; a transaction stays pending until Remove is called,
// and neither the miner package nor cmd/corenode calls it (spec.md §5 "the mempool is
// consulted via a pull API ... so block building is self-paced").
func (p *Pool) FetchTxns(batchSize int) *ordered.Map[string, *txn.Txn] {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := ordered.NewMap[string, *txn.Txn]()
	for _, id := range p.txs.Keys() {
		if out.Len() >= batchSize {
			break
		}
		t, _ := p.txs.Get(id)
		out.Set(id, t)
	}
	return out
}
