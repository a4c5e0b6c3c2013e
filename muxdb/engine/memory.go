package engine

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// NewMemEngine creates an in-memory leveldb-backed engine, used by tests the
// way the teacher's lvldb.NewMem() backs consensus/DAG tests.
func NewMemEngine() (Engine, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return NewLevelEngine(db), nil
}
