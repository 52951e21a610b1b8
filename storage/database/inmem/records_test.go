package inmemdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/tests"
)

func TestBackend(t *testing.T) {
	testutil.TestBackend(t, NewBackend(Open()))
}

func TestBackend_Isolation(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(Open())

	vals := record.Values{"name": "Linear Algebra", "code": "MATH103", "credits": int64(3)}
	require.NoError(t, b.Insert(ctx, "subjects", vals))
	vals["name"] = "changed"

	recs, err := b.Select(ctx, "subjects", nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Linear Algebra", recs[0].Values["name"])

	recs[0].Values["name"] = "changed again"
	recs, _ = b.Select(ctx, "subjects", nil)
	assert.Equal(t, "Linear Algebra", recs[0].Values["name"])
}
