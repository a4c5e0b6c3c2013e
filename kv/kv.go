// Package kv defines the storage-engine interface the DAG Store and account
// store persist through. It is adapted from the teacher's kv package (used
// throughout muxdb/engine) so the leveldb engine underneath needs no
// structural change — only its import path moves under this module.
package kv

import "context"

// Store is a key-value store with snapshot and bulk-write support.
type Store interface {
	Getter
	Putter
	IsNotFound(err error) bool
	Snapshot() Snapshot
	Bulk() Bulk
	Iterate(r Range) Iterator
	DeleteRange(ctx context.Context, r Range) error
}

// Engine is a Store that can be closed.
type Engine interface {
	Store
	Close() error
}

// Getter reads single keys.
type Getter interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
}

// Putter writes single keys.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// Snapshot is a consistent point-in-time read view.
type Snapshot interface {
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
	Release()
}

// Bulk buffers writes and flushes them as a batch.
type Bulk interface {
	Put(key, val []byte) error
	Delete(key []byte) error
	EnableAutoFlush()
	Write() error
}

// Range bounds an iteration: [Start, Limit).
type Range struct {
	Start []byte
	Limit []byte
}

// Iterator walks a key range in order.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Release()
}

// The following function-type adapters let callers build ad-hoc Snapshot/Bulk
// implementations out of closures, the pattern the engine package uses to
// assemble a Snapshot/Bulk from a handful of captured closures without a
// named struct (see muxdb/engine/leveldb.go).

type GetFunc func(key []byte) ([]byte, error)

func (f GetFunc) Get(key []byte) ([]byte, error) { return f(key) }

type HasFunc func(key []byte) (bool, error)

func (f HasFunc) Has(key []byte) (bool, error) { return f(key) }

type IsNotFoundFunc func(err error) bool

func (f IsNotFoundFunc) IsNotFound(err error) bool { return f(err) }

type ReleaseFunc func()

func (f ReleaseFunc) Release() { f() }

type PutFunc func(key, val []byte) error

func (f PutFunc) Put(key, val []byte) error { return f(key, val) }

type DeleteFunc func(key []byte) error

func (f DeleteFunc) Delete(key []byte) error { return f(key) }

type EnableAutoFlushFunc func()

func (f EnableAutoFlushFunc) EnableAutoFlush() { f() }

type WriteFunc func() error

func (f WriteFunc) Write() error { return f() }
