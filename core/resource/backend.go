// Package resource mediates between a presentation surface and a persistence
// backend for one collection of records.
package resource

import (
	"context"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

//go:generate mockgen -destination=mock_backend_test.go -package=resource github.com/trezcool/masomo-records/core/resource Backend

// Backend persists the records of named collections.
// Update and Delete return core.ErrNotFound when no record matches id.
type Backend interface {
	Select(ctx context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error)
	Insert(ctx context.Context, collection string, values record.Values) error
	Update(ctx context.Context, collection string, values record.Values, id record.ID) error
	Delete(ctx context.Context, collection string, id record.ID) error
}

// ConfirmFunc asks the user to confirm the removal of rec.
// It may block until the user answers or ctx is done.
type ConfirmFunc func(ctx context.Context, rec record.Record) (bool, error)

// AlwaysConfirm accepts every removal; meant for non-interactive callers.
func AlwaysConfirm(context.Context, record.Record) (bool, error) { return true, nil }
