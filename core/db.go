package core

import (
	"strings"

	"github.com/pkg/errors"
)

// DBOrdering orders a collection on one field.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseOrdering reads a comma separated list of fields, a leading "-" meaning descending.
// e.g. "year_level,-last_name"
func ParseOrdering(s string) []DBOrdering {
	var orderings []DBOrdering
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

// FormatOrdering is the inverse of ParseOrdering.
func FormatOrdering(orderings []DBOrdering) string {
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if ord.Ascending {
			parts = append(parts, ord.Field)
		} else {
			parts = append(parts, "-"+ord.Field)
		}
	}
	return strings.Join(parts, ",")
}

// ErrUnknownOrdering is returned when ordering on a field the collection does not have.
var ErrUnknownOrdering = errors.New("cannot order by unknown field")
