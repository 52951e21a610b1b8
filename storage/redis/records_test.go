package redisdb

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
	"github.com/trezcool/masomo-records/tests"
)

// newBackend connects to the redis at REDIS_ADDR, under a namespace of its own.
func newBackend(t *testing.T) *Backend {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	ctx := context.Background()
	conf := &core.Config{}
	conf.Redis.Address = addr
	client, err := NewClient(ctx, conf)
	require.NoError(t, err)

	b := NewBackend(client, "test-"+uuid.New().String(), academics.Schemas()...)
	t.Cleanup(func() {
		for _, s := range academics.Schemas() {
			_ = b.Flush(ctx, s.Collection)
		}
		_ = client.Close()
	})
	return b
}

func TestBackend(t *testing.T) {
	testutil.TestBackend(t, newBackend(t))
}

func TestBackend_Blanks(t *testing.T) {
	b := newBackend(t)
	g := testutil.CreateRecord(t, b, "grades", record.Values{
		"student_number": "A1", "subject_code": "CS201", "term": "first", "grade": int64(0), "remarks": nil,
	})
	assert.Nil(t, g.Values["remarks"])
	assert.Equal(t, int64(0), g.Values["grade"])
}

func TestFields(t *testing.T) {
	got := fields(academics.Grades, record.Values{"grade": int64(3), "remarks": nil, "nope": 1})
	assert.Equal(t, map[string]interface{}{"grade": int64(3), "remarks": ""}, got)
}
