package redisdb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

// Backend keeps each record of a collection in a hash, indexed by a set of identifiers:
//
//	<ns>:<collection>:seq   identifier counter
//	<ns>:<collection>:ids   set of identifiers
//	<ns>:<collection>:<id>  record hash
type Backend struct {
	client    *redis.Client
	namespace string
	schemas   map[string]record.Schema
}

func NewBackend(client *redis.Client, namespace string, schemas ...record.Schema) *Backend {
	b := &Backend{
		client:    client,
		namespace: namespace,
		schemas:   make(map[string]record.Schema, len(schemas)),
	}
	for _, s := range schemas {
		b.schemas[s.Collection] = s
	}
	return b
}

// NewClient connects to redis and checks the connection.
func NewClient(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Address,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return client, nil
}

func (b *Backend) key(collection string, suffix interface{}) string {
	return fmt.Sprintf("%s:%s:%v", b.namespace, collection, suffix)
}

func (b *Backend) schema(collection string) (record.Schema, error) {
	s, ok := b.schemas[collection]
	if !ok {
		return record.Schema{}, errors.Errorf("unknown collection %q", collection)
	}
	return s, nil
}

// fields converts the declared values to hash fields; blanks are stored as empty strings.
func fields(s record.Schema, vals record.Values) map[string]interface{} {
	out := make(map[string]interface{}, len(vals))
	for _, f := range s.Fields {
		v, ok := vals[f.Name]
		if !ok {
			continue
		}
		if v == nil {
			v = ""
		}
		out[f.Name] = v
	}
	return out
}

func (b *Backend) Select(ctx context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error) {
	s, err := b.schema(collection)
	if err != nil {
		return nil, err
	}
	if err = s.CheckOrdering(orderBy); err != nil {
		return nil, err
	}

	ids, err := b.client.SMembers(ctx, b.key(collection, "ids")).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, errors.Wrapf(err, "listing %s", collection)
	}
	if len(ids) == 0 {
		return []record.Record{}, nil
	}

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err = b.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, b.key(collection, id))
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", collection)
	}

	recs := make([]record.Record, 0, len(ids))
	for i, cmd := range cmds {
		hash := cmd.Val()
		if len(hash) == 0 {
			continue // deleted since SMEMBERS
		}
		id, err := strconv.ParseInt(ids[i], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s id %q", collection, ids[i])
		}
		vals := make(record.Values, len(hash))
		for k, v := range hash {
			vals[k] = v
		}
		recs = append(recs, record.Record{ID: record.ID(id), Values: s.Normalize(vals)})
	}

	record.Sort(recs, orderBy)
	return recs, nil
}

func (b *Backend) Insert(ctx context.Context, collection string, values record.Values) error {
	s, err := b.schema(collection)
	if err != nil {
		return err
	}

	id, err := b.client.Incr(ctx, b.key(collection, "seq")).Result()
	if err != nil {
		return errors.Wrapf(err, "allocating %s id", collection)
	}

	hash := fields(s, values)
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(hash) > 0 {
			pipe.HSet(ctx, b.key(collection, id), hash)
		}
		pipe.SAdd(ctx, b.key(collection, "ids"), id)
		return nil
	})
	if err != nil {
		return errors.Wrapf(err, "inserting into %s", collection)
	}
	return nil
}

// mutate runs fn in a transaction once the record id is known to exist.
func (b *Backend) mutate(ctx context.Context, collection string, id record.ID, fn func(pipe redis.Pipeliner)) error {
	idsKey := b.key(collection, "ids")
	return b.client.Watch(ctx, func(tx *redis.Tx) error {
		exists, err := tx.SIsMember(ctx, idsKey, int64(id)).Result()
		if err != nil {
			return err
		}
		if !exists {
			return core.ErrNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			fn(pipe)
			return nil
		})
		return err
	}, idsKey)
}

func (b *Backend) Update(ctx context.Context, collection string, values record.Values, id record.ID) error {
	s, err := b.schema(collection)
	if err != nil {
		return err
	}

	hash := fields(s, values)
	err = b.mutate(ctx, collection, id, func(pipe redis.Pipeliner) {
		if len(hash) > 0 {
			pipe.HSet(ctx, b.key(collection, int64(id)), hash)
		}
	})
	if err != nil && err != core.ErrNotFound {
		return errors.Wrapf(err, "updating %s", collection)
	}
	return err
}

func (b *Backend) Delete(ctx context.Context, collection string, id record.ID) error {
	if _, err := b.schema(collection); err != nil {
		return err
	}

	err := b.mutate(ctx, collection, id, func(pipe redis.Pipeliner) {
		pipe.SRem(ctx, b.key(collection, "ids"), int64(id))
		pipe.Del(ctx, b.key(collection, int64(id)))
	})
	if err != nil && err != core.ErrNotFound {
		return errors.Wrapf(err, "deleting from %s", collection)
	}
	return err
}

// Flush removes every key of collection.
func (b *Backend) Flush(ctx context.Context, collection string) error {
	ids, err := b.client.SMembers(ctx, b.key(collection, "ids")).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return errors.Wrapf(err, "listing %s", collection)
	}
	keys := []string{b.key(collection, "ids"), b.key(collection, "seq")}
	for _, id := range ids {
		keys = append(keys, b.key(collection, id))
	}
	return errors.Wrapf(b.client.Del(ctx, keys...).Err(), "flushing %s", collection)
}
