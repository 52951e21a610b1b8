package database

import (
	"database/sql"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
)

func sqliteConf() *core.Config {
	conf := &core.Config{}
	conf.Database.Engine = SQLite
	conf.Database.Name = ":memory:"
	return conf
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := Open(sqliteConf())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, Migrate(db, SQLite, "up"))

	var tables []string
	err = db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND name != 'goose_db_version' ORDER BY name")
	require.NoError(t, err)
	assert.Equal(t, []string{"grades", "students", "subjects"}, tables)

	require.NoError(t, Migrate(db, SQLite, "down-to", "0"))
	tables = nil
	err = db.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('grades', 'students', 'subjects')")
	require.NoError(t, err)
	assert.Empty(t, tables)
}

func TestMigrate_Command(t *testing.T) {
	db, err := Open(sqliteConf())
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var gotCmd, gotDir string
	var gotArgs []string
	origRun := gooseRunFunc
	defer func() { gooseRunFunc = origRun }()
	gooseRunFunc = func(command string, _ *sql.DB, dir string, args ...string) error {
		gotCmd, gotDir, gotArgs = command, dir, args
		return errors.New("boom")
	}

	err = Migrate(db, SQLite, "up-to", "2")
	assert.Error(t, err)
	assert.Equal(t, "up-to", gotCmd)
	assert.Equal(t, "migrations/sqlite3", gotDir)
	assert.Equal(t, []string{"2"}, gotArgs)

	assert.Error(t, Migrate(db, "oracle", "up"))
}

func TestOpen_UnsupportedEngine(t *testing.T) {
	conf := sqliteConf()
	conf.Database.Engine = "oracle"
	_, err := Open(conf)
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	conf := &core.Config{}
	conf.Database.Engine = Postgres
	conf.Database.Host = "db"
	conf.Database.Port = "5432"
	conf.Database.Name = "records"
	conf.Database.User = "app"
	conf.Database.Password = "secret"
	conf.Database.AdminUser = "postgres"
	conf.Database.DisableTLS = true

	assert.Equal(t, "postgres://app:secret@db:5432/records?sslmode=disable&timezone=utc", postgresDSN("records", false, conf))
	assert.True(t, strings.HasPrefix(postgresDSN("postgres", true, conf), "postgres://postgres:@db:5432/postgres"))

	conf.Database.Port = "3306"
	dsn := mysqlDSN(conf)
	assert.True(t, strings.HasPrefix(dsn, "app:secret@tcp(db:3306)/records?"), dsn)
	assert.Contains(t, dsn, "clientFoundRows=true")
	assert.Contains(t, dsn, "parseTime=true")
}
