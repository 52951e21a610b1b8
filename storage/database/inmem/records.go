package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

// Backend persists records in a process-local DB.
type Backend struct {
	db *DB
}

func NewBackend(db *DB) *Backend {
	return &Backend{db: db}
}

func (b *Backend) Select(_ context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error) {
	t := b.db.table(collection)
	t.RLock()
	recs := make([]record.Record, 0, len(t.rows))
	for id, vals := range t.rows {
		recs = append(recs, record.New(id, vals))
	}
	t.RUnlock()

	record.Sort(recs, orderBy)
	return recs, nil
}

func (b *Backend) Insert(_ context.Context, collection string, values record.Values) error {
	t := b.db.table(collection)
	t.Lock()
	defer t.Unlock()

	t.pkCount++
	vals := values.Copy()
	delete(vals, record.IDField)
	t.rows[t.pkCount] = vals
	return nil
}

// Update sets the given fields, leaving the others untouched.
func (b *Backend) Update(_ context.Context, collection string, values record.Values, id record.ID) error {
	t := b.db.table(collection)
	t.Lock()
	defer t.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return core.ErrNotFound
	}
	for k, v := range values {
		if k != record.IDField {
			row[k] = v
		}
	}
	return nil
}

func (b *Backend) Delete(_ context.Context, collection string, id record.ID) error {
	t := b.db.table(collection)
	t.Lock()
	defer t.Unlock()

	if _, ok := t.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}
