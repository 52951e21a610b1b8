package resource

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

// Service exposes one collection without any UI state, applying the full schema validation.
type Service struct {
	schema     record.Schema
	backend    Backend
	validate   *validator.Validate
	translator ut.Translator
}

func NewService(schema record.Schema, backend Backend, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{
		schema:     schema,
		backend:    backend,
		validate:   validate,
		translator: translator,
	}
}

func (svc *Service) Schema() record.Schema { return svc.schema }

// List returns the collection ordered as requested, by sort key when ordering is empty.
func (svc *Service) List(ctx context.Context, ordering ...core.DBOrdering) ([]record.Record, error) {
	if len(ordering) == 0 {
		ordering = svc.schema.DefaultOrdering()
	} else if err := svc.schema.CheckOrdering(ordering); err != nil {
		return nil, core.NewValidationError(err, core.FieldError{Field: "ordering", Error: err.Error()})
	}

	recs, err := svc.backend.Select(ctx, svc.schema.Collection, ordering)
	if err != nil {
		return nil, core.NewFetchError(svc.schema.Collection, err)
	}
	return recs, nil
}

// Get returns the record with id.
func (svc *Service) Get(ctx context.Context, id record.ID) (record.Record, error) {
	recs, err := svc.List(ctx)
	if err != nil {
		return record.Record{}, err
	}
	for _, rec := range recs {
		if rec.ID == id {
			return rec, nil
		}
	}
	return record.Record{}, core.ErrNotFound
}

func (svc *Service) clean(vals record.Values) (record.Values, error) {
	if err := svc.schema.Validate(svc.validate, svc.translator, vals); err != nil {
		return nil, err
	}
	return svc.schema.Coerce(vals)
}

func (svc *Service) Create(ctx context.Context, vals record.Values) error {
	vals, err := svc.clean(vals)
	if err != nil {
		return err
	}
	if err = svc.backend.Insert(ctx, svc.schema.Collection, vals); err != nil {
		return core.NewMutationError(svc.schema.Collection, core.ActionCreate, 0, err)
	}
	return nil
}

// Update replaces the values of the record with id.
// With partial set, fields absent from vals keep their stored value.
func (svc *Service) Update(ctx context.Context, id record.ID, vals record.Values, partial bool) error {
	if partial {
		cur, err := svc.Get(ctx, id)
		if err != nil {
			return err
		}
		merged := cur.Values.Copy()
		for k, v := range vals {
			merged[k] = v
		}
		vals = merged
	}

	vals, err := svc.clean(vals)
	if err != nil {
		return err
	}
	if err = svc.backend.Update(ctx, svc.schema.Collection, vals, id); err != nil {
		return core.NewMutationError(svc.schema.Collection, core.ActionUpdate, int64(id), err)
	}
	return nil
}

func (svc *Service) Delete(ctx context.Context, id record.ID) error {
	if err := svc.backend.Delete(ctx, svc.schema.Collection, id); err != nil {
		return core.NewMutationError(svc.schema.Collection, core.ActionDelete, int64(id), err)
	}
	return nil
}

// Import creates every row, stopping at the first failure.
// It returns the number of rows created.
func (svc *Service) Import(ctx context.Context, rows []record.Values) (int, error) {
	for i, vals := range rows {
		if err := svc.Create(ctx, vals); err != nil {
			return i, errors.Wrapf(err, "row %d", i+1)
		}
	}
	return len(rows), nil
}
