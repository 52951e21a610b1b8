package testutil

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
)

type backend interface {
	selectInserter
	Update(ctx context.Context, collection string, values record.Values, id record.ID) error
	Delete(ctx context.Context, collection string, id record.ID) error
}

// TestBackend checks the persistence contract on an empty students collection.
func TestBackend(t *testing.T, b backend) {
	ctx := context.Background()
	coll := academics.StudentsCollection
	byNumber := academics.Students.DefaultOrdering()

	recs, err := b.Select(ctx, coll, byNumber)
	require.NoError(t, err)
	require.Empty(t, recs)

	lee := CreateRecord(t, b, coll, record.Values{
		"student_number": "B7", "first_name": "Jo", "last_name": "Lee", "course": "CS", "year_level": int64(2),
	})
	kim := CreateRecord(t, b, coll, record.Values{
		"student_number": "A3", "first_name": "Al", "last_name": "Kim", "course": "EE", "year_level": int64(4),
	})
	ray := CreateRecord(t, b, coll, record.Values{
		"student_number": "C1", "first_name": "Mo", "last_name": "Ray", "course": "CS", "year_level": int64(2),
	})

	t.Run("assigns unique identifiers", func(t *testing.T) {
		assert.False(t, lee.ID.IsZero())
		assert.NotEqual(t, lee.ID, kim.ID)
		assert.NotEqual(t, kim.ID, ray.ID)
		assert.Equal(t, "Lee", lee.Values["last_name"])
		assert.Equal(t, int64(2), lee.Values["year_level"])
	})

	t.Run("select orders", func(t *testing.T) {
		recs, err := b.Select(ctx, coll, byNumber)
		require.NoError(t, err)
		assert.Equal(t, []record.ID{kim.ID, lee.ID, ray.ID}, IDs(recs))

		recs, err = b.Select(ctx, coll, core.ParseOrdering("-year_level,-student_number"))
		require.NoError(t, err)
		assert.Equal(t, []record.ID{kim.ID, ray.ID, lee.ID}, IDs(recs))
	})

	t.Run("update", func(t *testing.T) {
		err := b.Update(ctx, coll, record.Values{"year_level": int64(3), "course": "Math"}, lee.ID)
		require.NoError(t, err)

		recs, err := b.Select(ctx, coll, byNumber)
		require.NoError(t, err)
		got := find(recs, lee.ID)
		require.NotNil(t, got)
		assert.Equal(t, int64(3), got.Values["year_level"])
		assert.Equal(t, "Math", got.Values["course"])
		assert.Equal(t, "Jo", got.Values["first_name"])

		err = b.Update(ctx, coll, record.Values{"year_level": int64(3)}, 9999)
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, b.Delete(ctx, coll, kim.ID))

		recs, err := b.Select(ctx, coll, byNumber)
		require.NoError(t, err)
		assert.Nil(t, find(recs, kim.ID))
		assert.Len(t, recs, 2)

		err = b.Delete(ctx, coll, kim.ID)
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))
	})

	t.Run("collections are separate", func(t *testing.T) {
		recs, err := b.Select(ctx, academics.GradesCollection, academics.Grades.DefaultOrdering())
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func find(recs []record.Record, id record.ID) *record.Record {
	for i := range recs {
		if recs[i].ID == id {
			return &recs[i]
		}
	}
	return nil
}
