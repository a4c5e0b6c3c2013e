// Package engine provides the leveldb-backed kv.Engine this module persists
// the DAG and account stores through (spec.md §6 "DAG persistence"),
// adapted from the teacher's muxdb/engine package.
package engine

import "github.com/dagchain/corenode/kv"

// Engine is a closeable kv.Store.
type Engine interface {
	kv.Store
	Close() error
}
