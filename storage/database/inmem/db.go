package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-records/core/record"
)

type (
	// DB keeps every collection in process memory; contents are lost on exit.
	DB struct {
		mu     sync.Mutex
		tables map[string]*table
	}

	table struct {
		sync.RWMutex
		pkCount record.ID
		rows    map[record.ID]record.Values
	}
)

func Open() *DB {
	return &DB{tables: make(map[string]*table)}
}

// table returns the table of collection, creating it on first use.
func (db *DB) table(collection string) *table {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[collection]
	if !ok {
		t = &table{rows: make(map[record.ID]record.Values)}
		db.tables[collection] = t
	}
	return t
}
