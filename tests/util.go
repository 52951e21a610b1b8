package testutil

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/services/logger"
)

// NewLogger returns a logger writing nowhere, with rollbar reporting disabled.
func NewLogger() core.Logger {
	conf := &core.Config{Env: "TEST"}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

type selectInserter interface {
	Select(ctx context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error)
	Insert(ctx context.Context, collection string, values record.Values) error
}

// CreateRecord inserts vals into collection and returns the stored record.
// The new record is the one holding the highest identifier.
func CreateRecord(t *testing.T, backend selectInserter, collection string, vals record.Values) record.Record {
	t.Helper()
	ctx := context.Background()

	if err := backend.Insert(ctx, collection, vals); err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	recs, err := backend.Select(ctx, collection, []core.DBOrdering{{Field: record.IDField, Ascending: false}})
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	if len(recs) == 0 {
		t.Fatalf("CreateRecord() failed: %s is empty after insert", collection)
	}
	return recs[0]
}

// IDs lists the identifiers of recs, in order.
func IDs(recs []record.Record) []record.ID {
	ids := make([]record.ID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	return ids
}
