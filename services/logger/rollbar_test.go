package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-records/core"
)

func newTestLogger() (*RollbarLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST"})
	logger.Enable(false)
	return logger, &buf
}

func TestRollbarLogger_print(t *testing.T) {
	logger, buf := newTestLogger()

	logger.Error("saving failed", errors.New("disk full"), map[string]interface{}{"collection": "grades"})
	assert.Contains(t, buf.String(), "saving failed\ndisk full\n")
	assert.Contains(t, buf.String(), "map[collection:grades]\n")

	buf.Reset()
	logger.Warn("token refused", core.Actor{ID: "sync", Name: "Sync"})
	assert.Equal(t, "token refused\nactor: Sync (sync)\n", buf.String())

	buf.Reset()
	logger.Info("ready")
	assert.Equal(t, "ready\n", buf.String())
}

func TestRollbarLogger_prepare(t *testing.T) {
	logger, _ := newTestLogger()
	err := errors.New("boom")
	actor := core.Actor{ID: "registrar", Name: "Registrar"}
	fetchErr := core.NewFetchError("grades", err)
	deleteErr := core.NewMutationError("grades", core.ActionDelete, 4, core.ErrNotFound)
	wrappedDeleteErr := errors.Wrap(deleteErr, "page grades")
	createErr := core.NewMutationError("students", core.ActionCreate, 0,
		core.NewValidationError(nil, core.FieldError{Field: "year_level", Error: "must be at least 1"}))

	tests := []struct {
		name string
		args []interface{}
		want []interface{}
	}{
		{name: "message only", want: []interface{}{"msg"}},
		{name: "actor is not forwarded", args: []interface{}{err, actor}, want: []interface{}{"msg", err}},
		{name: "single actor", args: []interface{}{actor, actor}, want: []interface{}{"msg"}},
		{
			name: "maps are merged",
			args: []interface{}{map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2}},
			want: []interface{}{"msg", map[string]interface{}{"a": 1, "b": 2}},
		},
		{
			name: "failed load",
			args: []interface{}{fetchErr},
			want: []interface{}{"msg", fetchErr, map[string]interface{}{"collection": "grades", "action": "fetch"}},
		},
		{
			name: "failed delete",
			args: []interface{}{wrappedDeleteErr, actor},
			want: []interface{}{"msg", wrappedDeleteErr, map[string]interface{}{
				"collection": "grades", "action": "delete", "record_id": int64(4),
			}},
		},
		{
			name: "rejected create",
			args: []interface{}{map[string]interface{}{"collection": "pupils"}, createErr},
			want: []interface{}{"msg", createErr, map[string]interface{}{
				"collection": "students", "action": "create", "invalid_fields": []string{"year_level"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.prepare("msg", tt.args))
		})
	}
}
