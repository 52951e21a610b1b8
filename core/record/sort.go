package record

import (
	"fmt"
	"sort"
	"strings"

	"github.com/trezcool/masomo-records/core"
)

// Sort orders recs in place, the way a database would for an ORDER BY clause.
// Blank values sort first; the identifier breaks ties.
func Sort(recs []Record, orderings []core.DBOrdering) {
	sort.SliceStable(recs, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(recs[i].Get(ord.Field), recs[j].Get(ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return recs[i].ID < recs[j].ID
	})
}

func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	_, aText := a.(string)
	_, bText := b.(string)
	if aText || bText {
		return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
	}

	if x, err := toInt64(a); err == nil {
		if y, err := toInt64(b); err == nil {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
