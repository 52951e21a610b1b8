package resource

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
)

func newService(t *testing.T) (*Service, *MockBackend) {
	t.Helper()
	backend := NewMockBackend(gomock.NewController(t))
	validate, translator := core.NewValidator()
	return NewService(academics.Subjects, backend, validate, translator), backend
}

var cs201 = record.Record{ID: 7, Values: record.Values{"name": "Data Structures & Algorithms", "code": "CS201", "credits": int64(4)}}

func TestService_List(t *testing.T) {
	svc, backend := newService(t)

	backend.EXPECT().
		Select(gomock.Any(), "subjects", []core.DBOrdering{{Field: "code", Ascending: true}}).
		Return([]record.Record{cs201}, nil)
	recs, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []record.ID{7}, ids(recs))

	ordering := core.ParseOrdering("-credits,name")
	backend.EXPECT().Select(gomock.Any(), "subjects", ordering).Return(nil, errNetwork)
	_, err = svc.List(ctx, ordering...)
	assert.True(t, core.IsFetchFailed(err))

	_, err = svc.List(ctx, core.ParseOrdering("lecturer")...)
	assert.True(t, core.IsValidationFailed(err))
}

func TestService_Get(t *testing.T) {
	svc, backend := newService(t)
	backend.EXPECT().Select(gomock.Any(), "subjects", gomock.Any()).Return([]record.Record{cs201}, nil).Times(2)

	got, err := svc.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, cs201, got)

	_, err = svc.Get(ctx, 8)
	assert.Equal(t, core.ErrNotFound, err)
}

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		vals       record.Values
		wantInsert record.Values
		wantFields []string
	}{
		{
			name:       "coerced",
			vals:       record.Values{"name": "Calculus", "code": "MATH101", "credits": "3", "extra": true},
			wantInsert: record.Values{"name": "Calculus", "code": "MATH101", "credits": int64(3)},
		},
		{name: "missing name", vals: record.Values{"code": "MATH101", "credits": 3}, wantFields: []string{"name"}},
		{name: "credits out of range", vals: record.Values{"name": "Calculus", "code": "MATH101", "credits": 7}, wantFields: []string{"credits"}},
		{name: "bad code", vals: record.Values{"name": "Calculus", "code": "MATH-101", "credits": 3}, wantFields: []string{"code"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, backend := newService(t)
			if tt.wantInsert != nil {
				backend.EXPECT().Insert(gomock.Any(), "subjects", tt.wantInsert).Return(nil)
			}

			err := svc.Create(ctx, tt.vals)
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var vErr *core.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tt.wantFields, vErr.FieldNames())
		})
	}
}

func TestService_Update(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		svc, backend := newService(t)
		backend.EXPECT().Update(gomock.Any(), "subjects", gomock.Any(), record.ID(9)).Return(core.ErrNotFound)

		err := svc.Update(ctx, 9, record.Values{"name": "Calculus", "code": "MATH101", "credits": 3}, false)
		assert.True(t, core.IsMutationFailed(err))
		assert.Equal(t, core.ErrNotFound, errors.Cause(err))
	})

	t.Run("partial", func(t *testing.T) {
		svc, backend := newService(t)
		want := cs201.Values.Copy()
		want["credits"] = int64(5)

		gomock.InOrder(
			backend.EXPECT().Select(gomock.Any(), "subjects", gomock.Any()).Return([]record.Record{cs201}, nil),
			backend.EXPECT().Update(gomock.Any(), "subjects", want, record.ID(7)).Return(nil),
		)
		assert.NoError(t, svc.Update(ctx, 7, record.Values{"credits": "5"}, true))
	})
}

func TestService_Delete(t *testing.T) {
	svc, backend := newService(t)
	gomock.InOrder(
		backend.EXPECT().Delete(gomock.Any(), "subjects", record.ID(7)).Return(nil),
		backend.EXPECT().Delete(gomock.Any(), "subjects", record.ID(7)).Return(core.ErrNotFound),
	)
	assert.NoError(t, svc.Delete(ctx, 7))
	assert.True(t, core.IsMutationFailed(svc.Delete(ctx, 7)))
}

func TestService_Import(t *testing.T) {
	svc, backend := newService(t)
	backend.EXPECT().Insert(gomock.Any(), "subjects", gomock.Any()).Return(nil).Times(2)

	n, err := svc.Import(ctx, academics.SubjectSeed()[:2])
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.Import(ctx, []record.Values{{"name": "Bad", "code": "", "credits": 1}})
	assert.Equal(t, 0, n)
	assert.True(t, core.IsValidationFailed(err))
}

func ids(recs []record.Record) []record.ID {
	out := make([]record.ID, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}
