// Package statemanager applies a certified convergence block's transactions
// to the account store (spec.md §4.5): fetch the sources, filter to what the
// convergence block actually retained, expand each transaction into
// per-address credits and debits, consolidate, and apply.
package statemanager

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/dagchain/corenode/account"
	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/claim"
	"github.com/dagchain/corenode/thor"
	"github.com/dagchain/corenode/txn"
)

// SourceReader is the DAG Store capability the manager depends on: resolving
// a convergence block's referenced proposals.
type SourceReader interface {
	GetSources(b block.Block) ([]block.Block, error)
}

// TxnStore is the in-memory, dedupe-on-write record of every transaction the
// chain has finalized (spec.md §4.5 step 6).
type TxnStore struct {
	mu  sync.Mutex
	txs map[string]*txn.Txn
}

// NewTxnStore creates an empty transaction store.
func NewTxnStore() *TxnStore { return &TxnStore{txs: make(map[string]*txn.Txn)} }

// Put records t, ignoring the write if its id is already present.
func (s *TxnStore) Put(t *txn.Txn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := t.ID()
	if _, ok := s.txs[id]; !ok {
		s.txs[id] = t
	}
}

// Get returns the transaction recorded under id, if any.
func (s *TxnStore) Get(id string) (*txn.Txn, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.txs[id]
	return t, ok
}

// Len reports how many distinct transactions have been recorded.
func (s *TxnStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

// ClaimStore is the in-memory, dedupe-on-write record of every claim the chain
// has finalized (spec.md §4.5 step 6).
type ClaimStore struct {
	mu     sync.Mutex
	claims map[thor.Bytes32]*claim.Claim
}

// NewClaimStore creates an empty claim store.
func NewClaimStore() *ClaimStore { return &ClaimStore{claims: make(map[thor.Bytes32]*claim.Claim)} }

// Put records c, ignoring the write if its hash is already present.
func (s *ClaimStore) Put(c *claim.Claim) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[c.Hash]; !ok {
		s.claims[c.Hash] = c
	}
}

// Get returns the claim recorded under hash, if any.
func (s *ClaimStore) Get(hash thor.Bytes32) (*claim.Claim, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[hash]
	return c, ok
}

// Len reports how many distinct claims have been recorded.
func (s *ClaimStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.claims)
}

// Manager applies certified convergence blocks to the account store and
// extends the transaction/claim stores, per spec.md §4.5.
type Manager struct {
	dag    SourceReader
	accts  *account.Store
	txns   *TxnStore
	claims *ClaimStore
}

// New builds a Manager over the given collaborators.
func New(dag SourceReader, accts *account.Store, txns *TxnStore, claims *ClaimStore) *Manager {
	return &Manager{dag: dag, accts: accts, txns: txns, claims: claims}
}

// Apply runs the certification pipeline over c: fetch sources, filter to
// retained transactions, expand to account updates, consolidate by address,
// apply, and extend the transaction/claim stores. It returns the new account
// trie root, the per-update application errors (one slot per updated address,
// nil where that account applied, each non-nil error naming its address;
// per-account isolation per step 5), and any fetch-level error.
func (m *Manager) Apply(c *block.Convergence) (thor.Bytes32, []error, error) {
	if !c.IsCertified() {
		return thor.Bytes32{}, nil, ErrNotConvergence
	}

	sources, err := m.dag.GetSources(c)
	if err != nil {
		return thor.Bytes32{}, nil, err
	}

	updates := make(map[thor.Address]*account.Update)
	ensure := func(addr thor.Address) *account.Update {
		u, ok := updates[addr]
		if !ok {
			u = &account.Update{Address: addr}
			updates[addr] = u
		}
		return u
	}

	var retainedTxns []*txn.Txn
	var retainedClaims []*claim.Claim

	for _, src := range sources {
		p, ok := src.(*block.Proposal)
		if !ok {
			continue
		}

		if retainSet, ok := c.Txns.Get(p.Hash()); ok {
			p.Txns.Each(func(id string, t *txn.Txn) {
				if !retainSet.Contains(id) {
					return // conflict loser, dropped here too (defense in depth)
				}
				retainedTxns = append(retainedTxns, t)
				expand(t, p, ensure)
			})
		}

		if retainHashes, ok := c.Claims.Get(p.Hash()); ok {
			p.Claims.Each(func(h thor.Bytes32, cl *claim.Claim) {
				if retainHashes.Contains(h) {
					retainedClaims = append(retainedClaims, cl)
				}
			})
		}
	}

	addrs := make([]thor.Address, 0, len(updates))
	batch := make([]account.Update, 0, len(updates))
	for addr, u := range updates {
		addrs = append(addrs, addr)
		batch = append(batch, *u)
	}
	applyErrs := m.accts.Apply(batch)

	root, err := m.accts.Commit()
	if err != nil {
		return thor.Bytes32{}, applyErrs, err
	}

	for _, t := range retainedTxns {
		m.txns.Put(t)
	}
	for _, cl := range retainedClaims {
		m.claims.Put(cl)
	}

	for i, e := range applyErrs {
		if e != nil {
			applyErrs[i] = errors.Wrapf(e, "statemanager: update account %s", addrs[i])
		}
	}
	return root, applyErrs, nil
}

// expand folds one retained transaction's effects into the per-address
// update map: a sender debit, a receiver credit, a proposer-fee credit, and
// one validator-fee credit per affirming validator (spec.md §4.5 step 3).
func expand(t *txn.Txn, p *block.Proposal, ensure func(thor.Address) *account.Update) {
	digest := t.Digest()

	sender := ensure(t.SenderAddress)
	sender.DebitDelta += t.Amount + t.Fees.ProposerShare + t.Fees.ValidatorShare
	if t.Nonce > sender.Nonce {
		sender.Nonce = t.Nonce
	}
	sender.Sent = append(sender.Sent, digest)

	receiver := ensure(t.ReceiverAddress)
	receiver.CreditDelta += t.Amount
	receiver.Recv = append(receiver.Recv, digest)

	if p.From != nil {
		proposer := ensure(p.From.Address)
		proposer.CreditDelta += t.Fees.ProposerShare
		proposer.Recv = append(proposer.Recv, digest)
	}

	validators := t.AffirmingValidators()
	if len(validators) > 0 {
		share := t.Fees.ValidatorShare / uint64(len(validators))
		for _, addr := range validators {
			v := ensure(addr)
			v.CreditDelta += share
			v.Recv = append(v.Recv, digest)
		}
	}
}
