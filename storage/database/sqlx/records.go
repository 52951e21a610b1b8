package sqlxrepos

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

// Backend persists each collection in the table of the same name.
// Only the columns declared by the collection schema are read or written.
type Backend struct {
	db      *sqlx.DB
	schemas map[string]record.Schema
	builder sq.StatementBuilderType
	quote   func(ident string) string
}

func NewBackend(db *sqlx.DB, schemas ...record.Schema) *Backend {
	b := &Backend{
		db:      db,
		schemas: make(map[string]record.Schema, len(schemas)),
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
		quote:   doubleQuote,
	}
	switch db.DriverName() {
	case "postgres":
		b.builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	case "mysql":
		b.quote = backQuote
	}
	for _, s := range schemas {
		b.schemas[s.Collection] = s
	}
	return b
}

func doubleQuote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func backQuote(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}

func (b *Backend) schema(collection string) (record.Schema, error) {
	s, ok := b.schemas[collection]
	if !ok {
		return record.Schema{}, errors.Errorf("unknown collection %q", collection)
	}
	return s, nil
}

// columns maps the declared fields present in vals to their quoted column.
func (b *Backend) columns(s record.Schema, vals record.Values) sq.Eq {
	cols := make(sq.Eq, len(vals))
	for _, f := range s.Fields {
		if v, ok := vals[f.Name]; ok {
			cols[b.quote(f.Name)] = v
		}
	}
	return cols
}

func (b *Backend) Select(ctx context.Context, collection string, orderBy []core.DBOrdering) ([]record.Record, error) {
	s, err := b.schema(collection)
	if err != nil {
		return nil, err
	}
	if err = s.CheckOrdering(orderBy); err != nil {
		return nil, err
	}

	cols := []string{b.quote(record.IDField)}
	for _, name := range s.FieldNames() {
		cols = append(cols, b.quote(name))
	}
	orders := make([]string, 0, len(orderBy)+1)
	for _, ord := range orderBy {
		orders = append(orders, b.quote(ord.Field)+" "+direction(ord))
	}
	orders = append(orders, b.quote(record.IDField)+" ASC")

	query, args, err := b.builder.Select(cols...).From(b.quote(collection)).OrderBy(orders...).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}

	rows, err := b.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "selecting %s", collection)
	}
	defer func() { _ = rows.Close() }()

	var recs []record.Record
	for rows.Next() {
		row := make(map[string]interface{})
		if err = rows.MapScan(row); err != nil {
			return nil, errors.Wrapf(err, "scanning %s", collection)
		}
		id, err := record.ToID(row[record.IDField])
		if err != nil {
			return nil, err
		}
		delete(row, record.IDField)
		recs = append(recs, record.Record{ID: id, Values: s.Normalize(row)})
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "selecting %s", collection)
	}
	return recs, nil
}

func direction(ord core.DBOrdering) string {
	if ord.Ascending {
		return "ASC"
	}
	return "DESC"
}

func (b *Backend) Insert(ctx context.Context, collection string, values record.Values) error {
	s, err := b.schema(collection)
	if err != nil {
		return err
	}

	query, args, err := b.builder.Insert(b.quote(collection)).SetMap(b.columns(s, values)).ToSql()
	if err != nil {
		return errors.Wrap(err, "building insert")
	}
	if _, err = b.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "inserting into %s", collection)
	}
	return nil
}

func (b *Backend) Update(ctx context.Context, collection string, values record.Values, id record.ID) error {
	s, err := b.schema(collection)
	if err != nil {
		return err
	}

	query, args, err := b.builder.Update(b.quote(collection)).
		SetMap(b.columns(s, values)).
		Where(sq.Eq{b.quote(record.IDField): int64(id)}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building update")
	}
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "updating %s", collection)
	}
	return checkAffected(res.RowsAffected())
}

func (b *Backend) Delete(ctx context.Context, collection string, id record.ID) error {
	if _, err := b.schema(collection); err != nil {
		return err
	}

	query, args, err := b.builder.Delete(b.quote(collection)).
		Where(sq.Eq{b.quote(record.IDField): int64(id)}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete")
	}
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.Wrapf(err, "deleting from %s", collection)
	}
	return checkAffected(res.RowsAffected())
}

func checkAffected(n int64, err error) error {
	if err != nil {
		return errors.Wrap(err, "reading affected rows")
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
