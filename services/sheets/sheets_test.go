package sheets

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/masomo-records/core/academics"
	"github.com/trezcool/masomo-records/core/record"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		row := row
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestExport(t *testing.T) {
	recs := []record.Record{
		record.New(3, record.Values{"student_number": "A3", "subject_code": "CS201", "term": "first", "grade": int64(91)}),
		record.New(5, record.Values{"student_number": "B7", "subject_code": "CS202", "term": "summer", "grade": int64(0), "remarks": "failed"}),
	}

	var buf bytes.Buffer
	require.NoError(t, Export(&buf, academics.Grades, recs))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Grades"}, f.GetSheetList())
	rows, err := f.GetRows("Grades")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"id", "student_number", "subject_code", "term", "grade", "remarks"},
		{"3", "A3", "CS201", "first", "91"},
		{"5", "B7", "CS202", "summer", "0", "failed"},
	}, rows)
}

func TestRead(t *testing.T) {
	t.Run("by label or name", func(t *testing.T) {
		buf := workbook(t,
			[]interface{}{"ID", "Subject Name", "code", "Credits", ""},
			[]interface{}{7, "Compilers", "CS401", 3, "ignored"},
			[]interface{}{nil, " ", nil, nil},
			[]interface{}{nil, "Networks", "CS402", "4"},
		)

		rows, err := Read(buf, academics.Subjects)
		require.NoError(t, err)
		assert.Equal(t, []record.Values{
			{"name": "Compilers", "code": "CS401", "credits": "3"},
			{"name": "Networks", "code": "CS402", "credits": "4"},
		}, rows)
	})

	t.Run("unknown column", func(t *testing.T) {
		buf := workbook(t, []interface{}{"name", "lecturer"})
		_, err := Read(buf, academics.Subjects)
		assert.Equal(t, record.ErrUnknownField, errors.Cause(err))
	})

	t.Run("empty sheet", func(t *testing.T) {
		rows, err := Read(workbook(t), academics.Subjects)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := Read(bytes.NewBufferString("name,code\n"), academics.Subjects)
		assert.Error(t, err)
	})
}

func TestExportRead(t *testing.T) {
	var buf bytes.Buffer
	seed := academics.SubjectSeed()
	recs := make([]record.Record, 0, len(seed))
	for i, vals := range seed {
		recs = append(recs, record.New(record.ID(i+1), vals))
	}
	require.NoError(t, Export(&buf, academics.Subjects, recs))

	rows, err := Read(&buf, academics.Subjects)
	require.NoError(t, err)
	require.Len(t, rows, len(seed))
	for i, vals := range rows {
		coerced, err := academics.Subjects.Coerce(vals)
		require.NoError(t, err)
		assert.Equal(t, seed[i], coerced)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "grades.xlsx", Filename("grades"))
}
