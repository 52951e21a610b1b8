// Package academics declares the collections of the records system.
package academics

import (
	"github.com/trezcool/masomo-records/core/record"
)

const (
	StudentsCollection = "students"
	SubjectsCollection = "subjects"
	GradesCollection   = "grades"
)

func bound(n int64) *int64 { return &n }

var Students = record.Schema{
	Collection: StudentsCollection,
	Title:      "Students",
	Fields: []record.Field{
		{Name: "student_number", Label: "Student No.", Type: record.TypeText, Required: true},
		{Name: "first_name", Label: "First Name", Type: record.TypeText, Required: true},
		{Name: "last_name", Label: "Last Name", Type: record.TypeText, Required: true},
		{Name: "course", Label: "Course", Type: record.TypeText, Required: true},
		{Name: "year_level", Label: "Year Level", Type: record.TypeInteger, Required: true, Min: bound(1)},
	},
	SortKey:     "student_number",
	TitleFields: []string{"first_name", "last_name"},
}

var Subjects = record.Schema{
	Collection: SubjectsCollection,
	Title:      "Subjects",
	Fields: []record.Field{
		{Name: "name", Label: "Subject Name", Type: record.TypeText, Required: true},
		{Name: "code", Label: "Code", Type: record.TypeText, Required: true, Rules: "alphanum_"},
		{Name: "credits", Label: "Credits", Type: record.TypeInteger, Required: true, Min: bound(1), Max: bound(6)},
	},
	SortKey:     "code",
	TitleFields: []string{"name"},
}

var (
	Terms   = []string{"first", "second", "summer"}
	Remarks = []string{"passed", "failed", "incomplete", "dropped"}
)

var Grades = record.Schema{
	Collection: GradesCollection,
	Title:      "Grades",
	Fields: []record.Field{
		{Name: "student_number", Label: "Student No.", Type: record.TypeText, Required: true},
		{Name: "subject_code", Label: "Subject Code", Type: record.TypeText, Required: true},
		{Name: "term", Label: "Term", Type: record.TypeEnum, Required: true, Options: Terms},
		{Name: "grade", Label: "Grade", Type: record.TypeInteger, Required: true, Min: bound(0), Max: bound(100)},
		{Name: "remarks", Label: "Remarks", Type: record.TypeEnum, Options: Remarks},
	},
	SortKey:     "student_number",
	TitleFields: []string{"student_number", "subject_code"},
}

// Schemas lists every collection, in page order.
func Schemas() []record.Schema {
	return []record.Schema{Students, Subjects, Grades}
}

// Lookup returns the schema of collection.
func Lookup(collection string) (record.Schema, bool) {
	for _, s := range Schemas() {
		if s.Collection == collection {
			return s, true
		}
	}
	return record.Schema{}, false
}

// SubjectSeed is the initial subjects catalogue.
func SubjectSeed() []record.Values {
	return []record.Values{
		{"name": "Data Structures & Algorithms", "code": "CS201", "credits": int64(4)},
		{"name": "Object-Oriented Programming", "code": "CS202", "credits": int64(3)},
		{"name": "Linear Algebra", "code": "MATH103", "credits": int64(3)},
		{"name": "Thermodynamics", "code": "EE310", "credits": int64(4)},
	}
}

// Seed returns the initial records of collection, if it has any.
func Seed(collection string) []record.Values {
	if collection == SubjectsCollection {
		return SubjectSeed()
	}
	return nil
}
