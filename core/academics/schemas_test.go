package academics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-records/core"
)

func TestSchemas(t *testing.T) {
	for _, s := range Schemas() {
		t.Run(s.Collection, func(t *testing.T) {
			if _, ok := s.Field(s.SortKey); !ok {
				t.Errorf("sort key %q is not a field of %s", s.SortKey, s.Collection)
			}
			for _, name := range s.TitleFields {
				if _, ok := s.Field(name); !ok {
					t.Errorf("title field %q is not a field of %s", name, s.Collection)
				}
			}
			got, ok := Lookup(s.Collection)
			assert.True(t, ok)
			assert.Equal(t, s.Collection, got.Collection)
		})
	}

	_, ok := Lookup("lecturers")
	assert.False(t, ok)
}

func TestSubjectSeed(t *testing.T) {
	validate, translator := core.NewValidator()
	for _, vals := range SubjectSeed() {
		if err := Subjects.Validate(validate, translator, vals); err != nil {
			t.Errorf("seed %v is invalid: %v", vals["code"], err)
		}
	}
}

func TestGrades_Validate(t *testing.T) {
	validate, translator := core.NewValidator()

	tests := []struct {
		name    string
		vals    map[string]interface{}
		wantErr bool
	}{
		{name: "valid", vals: map[string]interface{}{"student_number": "A1", "subject_code": "CS201", "term": "first", "grade": "0"}},
		{name: "with remarks", vals: map[string]interface{}{"student_number": "A1", "subject_code": "CS201", "term": "summer", "grade": 100, "remarks": "passed"}},
		{name: "grade too high", vals: map[string]interface{}{"student_number": "A1", "subject_code": "CS201", "term": "first", "grade": 101}, wantErr: true},
		{name: "unknown term", vals: map[string]interface{}{"student_number": "A1", "subject_code": "CS201", "term": "third", "grade": 50}, wantErr: true},
		{name: "missing term", vals: map[string]interface{}{"student_number": "A1", "subject_code": "CS201", "grade": 50}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Grades.Validate(validate, translator, tt.vals)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
