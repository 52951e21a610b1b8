package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/storage/database"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/storage/database/sqlx"
	"github.com/trezcool/masomo-records/storage/remote"
	"github.com/trezcool/masomo-records/tests"
)

func testConf() *core.Config {
	conf := &core.Config{
		Storage: map[string]string{
			academics.SubjectsCollection: core.StorageMemory,
			academics.GradesCollection:   core.StorageRemote,
		},
	}
	conf.Database.Engine = database.SQLite
	conf.Database.Name = ":memory:"
	conf.API.BaseURL = "http://localhost:8000"
	return conf
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	reg, err := Open(ctx, testConf(), testutil.NewLogger(), academics.Schemas()...)
	require.NoError(t, err)
	defer func() { _ = reg.Close() }()

	students, err := reg.Backend(academics.StudentsCollection)
	require.NoError(t, err)
	assert.IsType(t, &sqlxrepos.Backend{}, students)
	assert.NotNil(t, reg.SQL())

	// migrated
	recs, err := students.Select(ctx, academics.StudentsCollection, academics.Students.DefaultOrdering())
	require.NoError(t, err)
	assert.Empty(t, recs)

	subjects, err := reg.Backend(academics.SubjectsCollection)
	require.NoError(t, err)
	assert.IsType(t, &inmemdb.Backend{}, subjects)

	// seeded
	recs, err = subjects.Select(ctx, academics.SubjectsCollection, academics.Subjects.DefaultOrdering())
	require.NoError(t, err)
	codes := make([]interface{}, 0, len(recs))
	for _, rec := range recs {
		codes = append(codes, rec.Values["code"])
	}
	assert.Equal(t, []interface{}{"CS201", "CS202", "EE310", "MATH103"}, codes)

	grades, err := reg.Backend(academics.GradesCollection)
	require.NoError(t, err)
	assert.IsType(t, &remote.Backend{}, grades)

	_, err = reg.Backend("lecturers")
	assert.Error(t, err)
}

func TestOpen_UnknownKind(t *testing.T) {
	conf := testConf()
	conf.Storage[academics.StudentsCollection] = "floppy"
	_, err := Open(context.Background(), conf, testutil.NewLogger(), academics.Schemas()...)
	assert.Error(t, err)
}
