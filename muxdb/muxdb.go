// Package muxdb multiplexes several logical named stores onto one physical
// kv.Engine by namespacing keys, the way the teacher's muxdb.MuxDB backs
// bft/state/chain storage over a single leveldb instance.
package muxdb

import (
	"context"

	"github.com/dagchain/corenode/kv"
	"github.com/dagchain/corenode/muxdb/engine"
)

// MuxDB multiplexes named kv.Store views over one physical engine.
type MuxDB struct {
	engine engine.Engine
}

// New wraps an already-open engine.
func New(e engine.Engine) *MuxDB {
	return &MuxDB{engine: e}
}

// NewMem opens an in-memory engine, for tests.
func NewMem() (*MuxDB, error) {
	e, err := engine.NewMemEngine()
	if err != nil {
		return nil, err
	}
	return New(e), nil
}

// Close releases the underlying engine.
func (m *MuxDB) Close() error { return m.engine.Close() }

// NewStore returns a namespaced kv.Store: every key is prefixed with name.
func (m *MuxDB) NewStore(name string) kv.Store {
	return &namespacedStore{prefix: []byte(name + "/"), engine: m.engine}
}

type namespacedStore struct {
	prefix []byte
	engine engine.Engine
}

func (s *namespacedStore) key(k []byte) []byte {
	out := make([]byte, 0, len(s.prefix)+len(k))
	out = append(out, s.prefix...)
	out = append(out, k...)
	return out
}

func (s *namespacedStore) Get(k []byte) ([]byte, error) { return s.engine.Get(s.key(k)) }
func (s *namespacedStore) Has(k []byte) (bool, error)   { return s.engine.Has(s.key(k)) }
func (s *namespacedStore) Put(k, v []byte) error        { return s.engine.Put(s.key(k), v) }
func (s *namespacedStore) Delete(k []byte) error        { return s.engine.Delete(s.key(k)) }
func (s *namespacedStore) IsNotFound(err error) bool     { return s.engine.IsNotFound(err) }

func (s *namespacedStore) Snapshot() kv.Snapshot {
	inner := s.engine.Snapshot()
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.ReleaseFunc
	}{
		func(k []byte) ([]byte, error) { return inner.Get(s.key(k)) },
		func(k []byte) (bool, error) { return inner.Has(s.key(k)) },
		inner.IsNotFound,
		inner.Release,
	}
}

func (s *namespacedStore) Bulk() kv.Bulk {
	inner := s.engine.Bulk()
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.EnableAutoFlushFunc
		kv.WriteFunc
	}{
		func(k, v []byte) error { return inner.Put(s.key(k), v) },
		func(k []byte) error { return inner.Delete(s.key(k)) },
		inner.EnableAutoFlush,
		inner.Write,
	}
}

func (s *namespacedStore) Iterate(r kv.Range) kv.Iterator {
	return s.engine.Iterate(kv.Range{Start: s.key(r.Start), Limit: s.key(r.Limit)})
}

func (s *namespacedStore) DeleteRange(ctx context.Context, r kv.Range) error {
	return s.engine.DeleteRange(ctx, kv.Range{Start: s.key(r.Start), Limit: s.key(r.Limit)})
}
