package dagstore

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/dagchain/corenode/block"
	"github.com/dagchain/corenode/kv"
	"github.com/dagchain/corenode/thor"
)

// traceCacheSize bounds the memoized Trace() result cache. A block's
// reference set never changes once inserted (the DAG is append-only), so a
// cached trace never goes stale.
const traceCacheSize = 1024

// Direction selects which edge set a traversal follows. The DAG only ever
// grows reference edges from child to parent, so Reference is the only
// direction spec.md names, but the type leaves room for a future direction
// without changing call sites.
type Direction int

// Reference walks a block's ref_hashes toward its ancestors.
const Reference Direction = 0

type vertex struct {
	blk     block.Block
	pending bool // true once appended without a certificate
}

// Store is the append-only block DAG keyed by content hash. It gates
// insertion on signature validity and referential integrity, and exposes the
// read/write discipline spec.md §5 requires: one RWMutex, never held across
// a blocking operation.
type Store struct {
	mu   sync.RWMutex
	db   kv.Store
	root thor.Bytes32

	vertices map[thor.Bytes32]*vertex
	children map[thor.Bytes32][]thor.Bytes32 // ref target -> blocks that reference it

	lastConfirmed thor.Bytes32   // hash of the most recently certified convergence block
	confirmedChain []thor.Bytes32 // genesis followed by every confirmed convergence block, in order

	pendingSigs map[thor.Bytes32]map[uint16][]byte // block hash -> node_idx -> raw signature

	traceCache *lru.Cache // thor.Bytes32 -> []thor.Bytes32, memoized Trace results
}

// New opens a Store over db. If db already holds blocks, the caller must
// invoke Reload to reconstruct the in-memory DAG (spec.md §6 "DAG
// persistence": on startup the core reconstructs the DAG by loading all
// blocks and adding reference edges in block-height order).
func New(db kv.Store) (*Store, error) {
	cache, err := lru.New(traceCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "dagstore: allocate trace cache")
	}
	return &Store{
		db:          db,
		vertices:    make(map[thor.Bytes32]*vertex),
		children:    make(map[thor.Bytes32][]thor.Bytes32),
		pendingSigs: make(map[thor.Bytes32]map[uint16][]byte),
		traceCache:  cache,
	}, nil
}

// AppendGenesis accepts a genesis block only if no root exists yet and its
// optional certificate verifies under the configured genesis key-set.
// verifyCert is supplied by the caller (sigprovider) rather than imported
// directly, keeping the DAG Store free of a dependency on the key-set shape.
func (s *Store) AppendGenesis(g *block.Genesis, verifyCert func(*block.Certificate, thor.Bytes32) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.root.IsZero() {
		return ErrRootAlreadyExists
	}
	if g.Certificate != nil {
		if err := verifyCert(g.Certificate, g.Hash()); err != nil {
			return errors.Wrap(ErrInvalidSignature, err.Error())
		}
	}
	h := g.Hash()
	if err := s.persist(h, g); err != nil {
		return err
	}
	s.vertices[h] = &vertex{blk: g, pending: g.Certificate == nil}
	s.root = h
	s.lastConfirmed = h
	s.confirmedChain = append(s.confirmedChain, h)
	return nil
}

// AppendProposal verifies the proposer's signature and that RefBlock names
// an existing vertex, then adds an edge ref_block -> block.
func (s *Store) AppendProposal(p *block.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vertices[p.RefBlock]; !ok {
		return ErrNonExistentReference
	}
	if err := p.VerifySignature(); err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}
	h := p.Hash()
	if _, exists := s.vertices[h]; exists {
		return ErrDuplicateInsertion
	}
	if err := s.persist(h, p); err != nil {
		return err
	}
	s.vertices[h] = &vertex{blk: p}
	s.children[p.RefBlock] = append(s.children[p.RefBlock], h)
	return nil
}

// PrecheckEvent carries the last confirmed header alongside a convergence
// block that arrived without a certificate, for the caller to publish as a
// ConvergenceBlockPrecheckRequested event (spec.md §6).
type PrecheckEvent struct {
	Convergence   *block.Convergence
	LastConfirmed thor.Bytes32
}

// AppendConvergence verifies the block's signature and resolves every
// reference to an existing vertex. A convergence block without a certificate
// is stored pending and a precheck event is returned for the caller to
// publish; the block is never silently discarded.
func (s *Store) AppendConvergence(c *block.Convergence) (*PrecheckEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ref := range c.References() {
		if _, ok := s.vertices[ref]; !ok {
			return nil, ErrNonExistentReference
		}
	}
	if err := c.VerifySignature(); err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	h := c.Hash()
	if _, exists := s.vertices[h]; exists {
		return nil, ErrDuplicateInsertion
	}
	if err := s.persist(h, c); err != nil {
		return nil, err
	}
	v := &vertex{blk: c, pending: c.Certificate == nil}
	s.vertices[h] = v
	for _, ref := range c.References() {
		s.children[ref] = append(s.children[ref], h)
	}
	if !v.pending {
		s.lastConfirmed = h
		s.confirmedChain = append(s.confirmedChain, h)
		return nil, nil
	}
	return &PrecheckEvent{Convergence: c, LastConfirmed: s.lastConfirmed}, nil
}

// AttachCertificate verifies the certificate under the current harvester
// key-set, then mutates the stored vertex to carry it and advances the
// "last confirmed header" pointer.
func (s *Store) AttachCertificate(hash thor.Bytes32, cert *block.Certificate, verifyCert func(*block.Certificate, thor.Bytes32) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vertices[hash]
	if !ok {
		return ErrUnknownBlock
	}
	c, ok := v.blk.(*block.Convergence)
	if !ok {
		return errors.Wrap(ErrInvariantViolation, "certificate target is not a convergence block")
	}
	if err := verifyCert(cert, hash); err != nil {
		return errors.Wrap(ErrInvalidSignature, err.Error())
	}
	c.Certificate = cert
	v.pending = false
	if err := s.persist(hash, c); err != nil {
		return err
	}
	s.lastConfirmed = hash
	s.confirmedChain = append(s.confirmedChain, hash)
	delete(s.pendingSigs, hash)
	return nil
}

// ConfirmedChain returns the genesis hash followed by every confirmed
// convergence block hash, in confirmation order.
func (s *Store) ConfirmedChain() []thor.Bytes32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]thor.Bytes32, len(s.confirmedChain))
	copy(out, s.confirmedChain)
	return out
}

// Between returns the confirmed convergence blocks strictly after `from` up
// to and including `to`, both of which must be entries of ConfirmedChain.
// The miner uses this to scan for txn ids already finalized beneath an
// orphaned proposal (spec.md §4.2 step 2).
func (s *Store) Between(from, to thor.Bytes32) ([]*block.Convergence, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromIdx, toIdx := -1, -1
	for i, h := range s.confirmedChain {
		if h == from {
			fromIdx = i
		}
		if h == to {
			toIdx = i
		}
	}
	if fromIdx < 0 || toIdx < 0 || toIdx < fromIdx {
		return nil, ErrUnknownBlock
	}
	var out []*block.Convergence
	for _, h := range s.confirmedChain[fromIdx+1 : toIdx+1] {
		if c, ok := s.vertices[h].blk.(*block.Convergence); ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetSources returns the vertices this block directly references.
func (s *Store) GetSources(b block.Block) ([]block.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]block.Block, 0, len(b.References()))
	for _, ref := range b.References() {
		v, ok := s.vertices[ref]
		if !ok {
			return nil, ErrNonExistentSource
		}
		out = append(out, v.blk)
	}
	return out, nil
}

// Get returns the block stored under hash.
func (s *Store) Get(hash thor.Bytes32) (block.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vertices[hash]
	if !ok {
		return nil, ErrUnknownBlock
	}
	return v.blk, nil
}

// IsPending reports whether the block at hash is awaiting certification.
func (s *Store) IsPending(hash thor.Bytes32) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vertices[hash]
	if !ok {
		return false, ErrUnknownBlock
	}
	return v.pending, nil
}

// LastConfirmed returns the hash of the most recently certified block.
func (s *Store) LastConfirmed() thor.Bytes32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastConfirmed
}

// Children returns the blocks directly referencing hash, i.e. the reverse of
// References — used by the miner to find unreferenced proposals.
func (s *Store) Children(hash thor.Bytes32) []thor.Bytes32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]thor.Bytes32, len(s.children[hash]))
	copy(out, s.children[hash])
	return out
}

// Trace returns the transitive closure of hashes reachable from `from` by
// following reference edges (spec.md §4.1 "trace"). Results are memoized per
// starting hash.
func (s *Store) Trace(from thor.Bytes32, _ Direction) ([]thor.Bytes32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if cached, ok := s.traceCache.Get(from); ok {
		order := cached.([]thor.Bytes32)
		out := make([]thor.Bytes32, len(order))
		copy(out, order)
		return out, nil
	}

	seen := make(map[thor.Bytes32]bool)
	var order []thor.Bytes32
	queue := []thor.Bytes32{from}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		v, ok := s.vertices[h]
		if !ok {
			return nil, ErrNonExistentSource
		}
		for _, ref := range v.blk.References() {
			if !seen[ref] {
				seen[ref] = true
				order = append(order, ref)
				queue = append(queue, ref)
			}
		}
	}
	cached := make([]thor.Bytes32, len(order))
	copy(cached, order)
	s.traceCache.Add(from, cached)
	return order, nil
}

// AddSigner records a partial signature toward a pending convergence
// certificate. When the set reaches threshold shares, the aggregated map is
// returned for the caller to combine into a certificate (spec.md §4.1
// "Pending-signature aggregation", §8 scenario 6); below threshold it
// returns ErrThresholdNotReached.
func (s *Store) AddSigner(hash thor.Bytes32, nodeIdx uint16, sig []byte, threshold int) (map[uint16][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shares, ok := s.pendingSigs[hash]
	if !ok {
		shares = make(map[uint16][]byte)
		s.pendingSigs[hash] = shares
	}
	shares[nodeIdx] = sig
	if len(shares) < threshold {
		return nil, ErrThresholdNotReached
	}
	out := make(map[uint16][]byte, len(shares))
	for k, v := range shares {
		out[k] = v
	}
	return out, nil
}

func (s *Store) persist(hash thor.Bytes32, b block.Block) error {
	data, err := block.Encode(b)
	if err != nil {
		return err
	}
	return s.db.Put(hash.Bytes(), data)
}

// Reload reconstructs the in-memory DAG from previously stored blocks supplied
// by the caller, re-adding their edges. The genesis block and every certified
// convergence block re-enter the confirmed chain. Per spec.md §6 the
// caller must feed blocks in block-height order; this method assumes the
// supplied slice is already sorted.
func (s *Store) Reload(blocks []block.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range blocks {
		h := b.Hash()
		v := &vertex{blk: b}
		if c, ok := b.(interface{ IsCertified() bool }); ok {
			v.pending = !c.IsCertified()
		}
		s.vertices[h] = v
		for _, ref := range b.References() {
			s.children[ref] = append(s.children[ref], h)
		}
		_, isGenesis := b.(*block.Genesis)
		if isGenesis && s.root.IsZero() {
			s.root = h
		}
		if isGenesis || (!v.pending && b.Kind() == block.KindConvergence) {
			s.lastConfirmed = h
			s.confirmedChain = append(s.confirmedChain, h)
		}
	}
}
