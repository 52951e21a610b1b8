// Package record describes the rows of a named collection: a backend-assigned
// identifier plus a set of typed attributes declared by a Schema.
package record

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"

	"github.com/pkg/errors"
)

// IDField is the name of the identifier attribute in every collection.
const IDField = "id"

// ID is assigned by the backend on creation. The zero value means "no identifier".
type ID int64

func (id ID) IsZero() bool { return id == 0 }

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseID parses a decimal identifier, e.g. from a URL param.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, errors.Errorf("invalid record id %q", s)
	}
	return ID(n), nil
}

// ToID converts an identifier read from a driver or a decoder (int64, []byte, json.Number, ...).
func ToID(v interface{}) (ID, error) {
	n, err := toInt64(v)
	if err != nil {
		return 0, errors.Wrap(err, "invalid record id")
	}
	return ID(n), nil
}

// Values maps attribute names to values. The identifier is never part of Values.
type Values map[string]interface{}

// Copy returns a shallow copy of vals.
func (vals Values) Copy() Values {
	cp := make(Values, len(vals))
	for k, v := range vals {
		cp[k] = v
	}
	return cp
}

// Keys returns the attribute names in lexical order.
func (vals Values) Keys() []string {
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record is one row of a collection.
type Record struct {
	ID     ID
	Values Values
}

// New returns a Record holding a copy of vals.
func New(id ID, vals Values) Record {
	return Record{ID: id, Values: vals.Copy()}
}

// Get returns the value of field name; IDField returns the identifier.
func (r Record) Get(name string) interface{} {
	if name == IDField {
		return int64(r.ID)
	}
	return r.Values[name]
}

// Copy returns a Record that shares nothing mutable with r.
func (r Record) Copy() Record {
	return Record{ID: r.ID, Values: r.Values.Copy()}
}

// MarshalJSON renders the record flat: {"id": 1, "first_name": "Jo", ...}
func (r Record) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(r.Values)+1)
	for k, v := range r.Values {
		m[k] = v
	}
	if !r.ID.IsZero() {
		m[IDField] = int64(r.ID)
	} else {
		m[IDField] = nil
	}
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]interface{}
	if err := dec.Decode(&m); err != nil {
		return errors.Wrap(err, "decoding record")
	}

	r.ID = 0
	if raw, ok := m[IDField]; ok {
		delete(m, IDField)
		if raw != nil {
			id, err := ToID(raw)
			if err != nil {
				return err
			}
			r.ID = id
		}
	}
	r.Values = m
	return nil
}
