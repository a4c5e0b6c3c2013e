package account

import (
	"github.com/ethereum/go-ethereum/ethdb"

	"github.com/dagchain/corenode/kv"
)

// kvBackend adapts our kv.Store to the ethdb.KeyValueStore surface that
// go-ethereum/trie needs for its node database, so the account trie can sit
// directly on the same leveldb engine as the rest of the node's persistent
// state (spec.md §1 treats the trie as "a keyed map with a root hash").
type kvBackend struct {
	kv.Store
}

func newKVBackend(s kv.Store) ethdb.KeyValueStore { return &kvBackend{s} }

func (b *kvBackend) Has(key []byte) (bool, error) { return b.Store.Has(key) }

func (b *kvBackend) Get(key []byte) ([]byte, error) { return b.Store.Get(key) }

func (b *kvBackend) Put(key, value []byte) error { return b.Store.Put(key, value) }

func (b *kvBackend) Delete(key []byte) error { return b.Store.Delete(key) }

func (b *kvBackend) NewBatch() ethdb.Batch { return &kvBatch{bulk: b.Store.Bulk()} }

func (b *kvBackend) NewBatchWithSize(int) ethdb.Batch { return b.NewBatch() }

func (b *kvBackend) NewIterator(prefix, start []byte) ethdb.Iterator {
	return b.Store.Iterate(kv.Range{Start: append(append([]byte{}, prefix...), start...)})
}

func (b *kvBackend) Stat(string) (string, error) { return "", nil }

func (b *kvBackend) Compact([]byte, []byte) error { return nil }

func (b *kvBackend) Close() error { return nil }

type kvBatch struct {
	bulk kv.Bulk
	size int
}

func (b *kvBatch) Put(key, value []byte) error {
	b.size += len(key) + len(value)
	return b.bulk.Put(key, value)
}

func (b *kvBatch) Delete(key []byte) error {
	b.size += len(key)
	return b.bulk.Delete(key)
}

func (b *kvBatch) ValueSize() int { return b.size }

func (b *kvBatch) Write() error { return b.bulk.Write() }

func (b *kvBatch) Reset() { b.size = 0 }

func (b *kvBatch) Replay(ethdb.KeyValueWriter) error { return nil }
