package sqlxrepos

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/storage/database"
	"github.com/trezcool/masomo-records/tests"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := &core.Config{}
	conf.Database.Engine = database.SQLite
	conf.Database.Name = ":memory:"

	db, err := database.Open(conf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(db, database.SQLite, "up"))
	return db
}

func TestBackend(t *testing.T) {
	testutil.TestBackend(t, NewBackend(openDB(t), academics.Schemas()...))
}

func TestBackend_Constraints(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(openDB(t), academics.Schemas()...)

	seed := academics.SubjectSeed()
	require.NoError(t, b.Insert(ctx, "subjects", seed[0]))
	assert.Error(t, b.Insert(ctx, "subjects", seed[0]), "codes are unique")

	recs, err := b.Select(ctx, "subjects", academics.Subjects.DefaultOrdering())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, seed[0], recs[0].Values)
}

func TestBackend_Optional(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(openDB(t), academics.Schemas()...)

	g := testutil.CreateRecord(t, b, "grades", record.Values{
		"student_number": "A1", "subject_code": "CS201", "term": "first", "grade": int64(90), "remarks": nil,
	})
	assert.Nil(t, g.Values["remarks"])
	assert.Equal(t, int64(90), g.Values["grade"])

	require.NoError(t, b.Update(ctx, "grades", record.Values{"remarks": "passed"}, g.ID))
	recs, err := b.Select(ctx, "grades", nil)
	require.NoError(t, err)
	assert.Equal(t, "passed", recs[0].Values["remarks"])
}

func TestBackend_Unknown(t *testing.T) {
	ctx := context.Background()
	b := NewBackend(openDB(t), academics.Schemas()...)

	_, err := b.Select(ctx, "lecturers", nil)
	assert.Error(t, err)

	_, err = b.Select(ctx, "students", core.ParseOrdering("password"))
	assert.Equal(t, core.ErrUnknownOrdering, errors.Cause(err))

	err = b.Delete(ctx, "students", 42)
	assert.Equal(t, core.ErrNotFound, err)
}

func TestQuoting(t *testing.T) {
	assert.Equal(t, `"students"`, doubleQuote("students"))
	assert.Equal(t, `"a""b"`, doubleQuote(`a"b`))
	assert.Equal(t, "`grades`", backQuote("grades"))
}
