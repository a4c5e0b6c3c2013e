package account

import (
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/kv"
	"github.com/dagchain/corenode/thor"
)

// Update is one consolidated per-address state change, the output of the
// State Manager's consolidation step (spec.md §4.5 step 4).
type Update struct {
	Address      thor.Address
	CreditDelta  uint64
	DebitDelta   uint64
	Nonce        uint64 // candidate nonce; applied as max(current, Nonce)
	Sent         []thor.Bytes32
	Recv         []thor.Bytes32
	Stake        []thor.Bytes32
	StorageRoot  *thor.Bytes32 // nil leaves StorageRoot unchanged
	CodeHash     *thor.Bytes32 // nil leaves CodeHash unchanged
}

// Store is the trie-backed account store. Writes go through Apply/Commit
// under the caller's own serialization (spec.md §5 requires a single writer
// role); reads may go through Snapshot for lock-free access to the last
// committed root.
type Store struct {
	mu  sync.Mutex // serializes Apply/Commit against Get-on-the-live-trie
	db  *trie.Database
	trl *trie.Trie

	committedRoot atomic.Value // thor.Bytes32, published after every Commit
}

// New opens the account store at root over db. A zero root opens an empty
// trie.
func New(db kv.Store, root thor.Bytes32) (*Store, error) {
	tdb := trie.NewDatabase(newKVBackend(db))
	tr, err := trie.New(common.Hash(root), tdb)
	if err != nil {
		return nil, errors.Wrap(err, "account: open trie")
	}
	s := &Store{db: tdb, trl: tr}
	s.committedRoot.Store(root)
	return s, nil
}

// Root returns the last committed trie root.
func (s *Store) Root() thor.Bytes32 {
	return s.committedRoot.Load().(thor.Bytes32)
}

// Get fetches the account at addr from the live (uncommitted) trie state.
func (s *Store) Get(addr thor.Address) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(addr)
}

func (s *Store) get(addr thor.Address) (*Account, error) {
	data, err := s.trl.TryGet(addr.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "account: trie lookup")
	}
	if len(data) == 0 {
		return &Account{}, nil
	}
	return decodeAccount(data)
}

// Apply applies each update to the live trie. Per-account isolation
// (spec.md §4.5 step 5): a failing update is recorded in the returned slice
// (indexed the same as updates, nil where it succeeded) but does not abort
// the remaining updates.
func (s *Store) Apply(updates []Update) []error {
	s.mu.Lock()
	defer s.mu.Unlock()

	errs := make([]error, len(updates))
	for i, u := range updates {
		errs[i] = s.applyOne(u)
	}
	return errs
}

func (s *Store) applyOne(u Update) error {
	acc, err := s.get(u.Address)
	if err != nil {
		return err
	}
	acc.Credits += u.CreditDelta
	acc.Debits += u.DebitDelta
	if u.Nonce > acc.Nonce {
		acc.Nonce = u.Nonce
	}
	acc.Sent = mergeDigests(acc.Sent, u.Sent)
	acc.Recv = mergeDigests(acc.Recv, u.Recv)
	acc.Stake = mergeDigests(acc.Stake, u.Stake)
	if u.StorageRoot != nil {
		acc.StorageRoot = *u.StorageRoot
	}
	if u.CodeHash != nil {
		acc.CodeHash = *u.CodeHash
	}

	data, err := encodeAccount(acc)
	if err != nil {
		return err
	}
	if err := s.trl.TryUpdate(u.Address.Bytes(), data); err != nil {
		return errors.Wrap(err, "account: trie update")
	}
	return nil
}

// Commit flushes the live trie to disk and publishes the new root for
// Snapshot readers.
func (s *Store) Commit() (thor.Bytes32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.trl.Commit(nil)
	if err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "account: commit trie")
	}
	if err := s.db.Commit(root, false, nil); err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "account: commit trie db")
	}
	out := thor.Bytes32(root)
	s.committedRoot.Store(out)
	return out, nil
}

// Snapshot returns a lock-free, read-only handle fixed to the last
// committed root (spec.md §5: "the account store's read-path uses a
// lock-free snapshot"). Concurrent Apply/Commit calls do not affect a
// Snapshot already taken.
func (s *Store) Snapshot() (*Snapshot, error) {
	root := s.Root()
	tr, err := trie.New(common.Hash(root), s.db)
	if err != nil {
		return nil, errors.Wrap(err, "account: open snapshot trie")
	}
	return &Snapshot{trie: tr}, nil
}

// Snapshot is a read-only, versioned view of the account store.
type Snapshot struct {
	trie *trie.Trie
}

// Get fetches the account at addr as of the snapshot's root.
func (sn *Snapshot) Get(addr thor.Address) (*Account, error) {
	data, err := sn.trie.TryGet(addr.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "account: snapshot lookup")
	}
	if len(data) == 0 {
		return &Account{}, nil
	}
	return decodeAccount(data)
}
