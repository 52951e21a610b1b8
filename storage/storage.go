// Package storage resolves the persistence backend of each collection from configuration.
package storage

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/core/resource"
	"github.com/trezcool/masomo-records/storage/database"
	"github.com/trezcool/masomo-records/storage/database/inmem"
	"github.com/trezcool/masomo-records/storage/database/sqlx"
	"github.com/trezcool/masomo-records/storage/redis"
	"github.com/trezcool/masomo-records/storage/remote"
)

const redisNamespace = "records"

// Registry holds one backend per collection, sharing connections between collections.
type Registry struct {
	conf     *core.Config
	logger   core.Logger
	schemas  []record.Schema
	backends map[string]resource.Backend

	memDB  *inmemdb.DB
	sqlDB  *sqlx.DB
	client *redis.Client
}

// Open connects every storage kind the configured collections need.
// Process-local stores start with the seed records of their collection.
func Open(ctx context.Context, conf *core.Config, logger core.Logger, schemas ...record.Schema) (*Registry, error) {
	reg := &Registry{
		conf:     conf,
		logger:   logger,
		schemas:  schemas,
		backends: make(map[string]resource.Backend, len(schemas)),
	}
	for _, s := range schemas {
		b, err := reg.backend(ctx, conf.StorageFor(s.Collection))
		if err != nil {
			_ = reg.Close()
			return nil, errors.Wrapf(err, "opening %s storage", s.Collection)
		}
		if _, ok := b.(*inmemdb.Backend); ok {
			if err = seed(ctx, b, s.Collection); err != nil {
				_ = reg.Close()
				return nil, err
			}
		}
		reg.backends[s.Collection] = b
		logger.Info(fmt.Sprintf("%s stored in %s", s.Collection, conf.StorageFor(s.Collection)))
	}
	return reg, nil
}

func (reg *Registry) backend(ctx context.Context, kind string) (resource.Backend, error) {
	switch kind {
	case core.StorageMemory:
		if reg.memDB == nil {
			reg.memDB = inmemdb.Open()
		}
		return inmemdb.NewBackend(reg.memDB), nil

	case core.StorageSQL:
		if reg.sqlDB == nil {
			db, err := database.Open(reg.conf)
			if err != nil {
				return nil, err
			}
			reg.sqlDB = db
			if reg.conf.Database.Engine == database.SQLite && reg.conf.Database.Name == ":memory:" {
				if err = database.Migrate(db, database.SQLite, "up"); err != nil {
					return nil, err
				}
			}
		}
		return sqlxrepos.NewBackend(reg.sqlDB, reg.schemas...), nil

	case core.StorageRedis:
		if reg.client == nil {
			client, err := redisdb.NewClient(ctx, reg.conf)
			if err != nil {
				return nil, err
			}
			reg.client = client
		}
		return redisdb.NewBackend(reg.client, redisNamespace, reg.schemas...), nil

	case core.StorageRemote:
		return remote.NewBackendFromConfig(reg.conf, reg.schemas...), nil
	}
	return nil, errors.Errorf("unknown storage kind %q", kind)
}

func seed(ctx context.Context, b resource.Backend, collection string) error {
	for _, vals := range academics.Seed(collection) {
		if err := b.Insert(ctx, collection, vals); err != nil {
			return errors.Wrapf(err, "seeding %s", collection)
		}
	}
	return nil
}

// Backend returns the backend of collection.
func (reg *Registry) Backend(collection string) (resource.Backend, error) {
	b, ok := reg.backends[collection]
	if !ok {
		return nil, errors.Errorf("no storage for collection %q", collection)
	}
	return b, nil
}

// SQL returns the SQL database, nil when no collection is stored in SQL.
func (reg *Registry) SQL() *sqlx.DB { return reg.sqlDB }

func (reg *Registry) Close() error {
	var err error
	if reg.sqlDB != nil {
		if e := reg.sqlDB.Close(); e != nil {
			err = errors.Wrap(e, "closing database")
		}
	}
	if reg.client != nil {
		if e := reg.client.Close(); e != nil && err == nil {
			err = errors.Wrap(e, "closing redis")
		}
	}
	return err
}
