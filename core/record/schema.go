package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
)

// ErrUnknownField is returned when addressing a field the schema does not declare.
var ErrUnknownField = errors.New("unknown field")

// FieldType is the declared type of an attribute.
type FieldType int

const (
	TypeText FieldType = iota
	TypeInteger
	TypeEnum
)

var fieldTypeNames = map[FieldType]string{
	TypeText:    "text",
	TypeInteger: "integer",
	TypeEnum:    "enum",
}

func (ft FieldType) String() string {
	if name, ok := fieldTypeNames[ft]; ok {
		return name
	}
	return "unknown"
}

func (ft FieldType) MarshalText() ([]byte, error) {
	return []byte(ft.String()), nil
}

func (ft *FieldType) UnmarshalText(b []byte) error {
	for t, name := range fieldTypeNames {
		if name == string(b) {
			*ft = t
			return nil
		}
	}
	return errors.Errorf("unknown field type %q", string(b))
}

// Field declares one attribute of a collection.
type Field struct {
	Name     string    `json:"name"`
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
	Options  []string  `json:"options,omitempty"` // TypeEnum only
	Min      *int64    `json:"min,omitempty"`     // TypeInteger only
	Max      *int64    `json:"max,omitempty"`     // TypeInteger only
	Rules    string    `json:"-"`                 // extra validator tags, e.g. "alphanum_"
}

// Schema describes the record shape of a named collection.
type Schema struct {
	Collection  string   `json:"collection"`
	Title       string   `json:"title"`
	Fields      []Field  `json:"fields"`
	SortKey     string   `json:"sort_key"`
	TitleFields []string `json:"-"`
}

// Field looks up a declared field by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames lists the declared attribute names in declaration order (no identifier).
func (s Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// DefaultOrdering is the ascending order on the sort key.
func (s Schema) DefaultOrdering() []core.DBOrdering {
	return []core.DBOrdering{{Field: s.SortKey, Ascending: true}}
}

// CheckOrdering verifies every ordering targets the identifier or a declared field.
func (s Schema) CheckOrdering(orderings []core.DBOrdering) error {
	for _, ord := range orderings {
		if ord.Field == IDField {
			continue
		}
		if _, ok := s.Field(ord.Field); !ok {
			return errors.Wrapf(core.ErrUnknownOrdering, "%s.%s", s.Collection, ord.Field)
		}
	}
	return nil
}

// Describe returns a human readable label for r, e.g. "Jo Lee".
func (s Schema) Describe(r Record) string {
	parts := make([]string, 0, len(s.TitleFields))
	for _, name := range s.TitleFields {
		if v := r.Values[name]; v != nil {
			if str := strings.TrimSpace(fmt.Sprint(v)); str != "" {
				parts = append(parts, str)
			}
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%s #%d", s.Collection, r.ID)
	}
	return strings.Join(parts, " ")
}

// isBlank reports whether v counts as "not provided".
func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return core.CleanString(val) == ""
	case []byte:
		return core.CleanString(string(val)) == ""
	}
	return false
}

// CheckRequired verifies presence of every required field.
// Only presence is checked: format and uniqueness are left to the backend.
func (s Schema) CheckRequired(vals Values) error {
	var flds []core.FieldError
	for _, f := range s.Fields {
		if f.Required && isBlank(vals[f.Name]) {
			flds = append(flds, core.FieldError{Field: f.Name, Error: "this field is required"})
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// Coerce converts raw input values to the declared field types.
// Blank optional values become nil; unknown fields are dropped.
func (s Schema) Coerce(vals Values) (Values, error) {
	out := make(Values, len(s.Fields))
	var flds []core.FieldError
	for _, f := range s.Fields {
		raw, ok := vals[f.Name]
		if !ok {
			continue
		}
		v, err := f.Coerce(raw)
		if err != nil {
			flds = append(flds, core.FieldError{Field: f.Name, Error: err.Error()})
			continue
		}
		out[f.Name] = v
	}
	if len(flds) > 0 {
		return nil, core.NewValidationError(nil, flds...)
	}
	return out, nil
}

// Normalize coerces values read back from a backend, keeping unparseable values as text.
func (s Schema) Normalize(vals Values) Values {
	out := make(Values, len(vals))
	for k, raw := range vals {
		f, ok := s.Field(k)
		if !ok {
			continue
		}
		if v, err := f.Coerce(raw); err == nil {
			out[k] = v
		} else {
			out[k] = fmt.Sprint(raw)
		}
	}
	return out
}

// Validate applies every declared constraint: presence, type, enum membership and range.
func (s Schema) Validate(validate *validator.Validate, translator ut.Translator, vals Values) error {
	coerced, err := s.Coerce(vals)
	if err != nil {
		return err
	}

	var flds []core.FieldError
	for _, f := range s.Fields {
		v := coerced[f.Name]
		if v == nil {
			if f.Required {
				flds = append(flds, core.FieldError{Field: f.Name, Error: "this field is required"})
			}
			continue
		}
		tag := f.tag()
		if tag == "" {
			continue
		}
		if err := validate.Var(v, tag); err != nil {
			var vErrs validator.ValidationErrors
			if errors.As(err, &vErrs) && len(vErrs) > 0 {
				flds = append(flds, core.FieldError{Field: f.Name, Error: vErrs[0].Translate(translator)})
				continue
			}
			return errors.Wrapf(err, "validating %s.%s", s.Collection, f.Name)
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// tag builds the validator tag for the declared type constraints.
func (f Field) tag() string {
	// presence is checked before, on the coerced value: 0 is a valid integer
	var rules []string
	switch f.Type {
	case TypeInteger:
		if f.Min != nil {
			rules = append(rules, "min="+strconv.FormatInt(*f.Min, 10))
		}
		if f.Max != nil {
			rules = append(rules, "max="+strconv.FormatInt(*f.Max, 10))
		}
	case TypeEnum:
		if len(f.Options) > 0 {
			rules = append(rules, "oneof="+strings.Join(f.Options, " "))
		}
	}
	if f.Rules != "" {
		rules = append(rules, f.Rules)
	}
	return strings.Join(rules, ",")
}

// Coerce converts raw to the declared type of f. Blank input yields nil.
func (f Field) Coerce(raw interface{}) (interface{}, error) {
	if b, ok := raw.([]byte); ok {
		raw = string(b)
	}
	if isBlank(raw) {
		return nil, nil
	}

	switch f.Type {
	case TypeInteger:
		n, err := toInt64(raw)
		if err != nil {
			return nil, errors.New("must be a whole number")
		}
		return n, nil
	case TypeEnum:
		s := core.CleanString(fmt.Sprint(raw))
		for _, opt := range f.Options {
			if s == opt {
				return s, nil
			}
		}
		return nil, errors.Errorf("must be one of: %s", strings.Join(f.Options, ", "))
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
		return fmt.Sprint(raw), nil
	}
}

func toInt64(raw interface{}) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, errors.Errorf("%d overflows int64", v)
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return floatToInt64(f)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return floatToInt64(f)
	case []byte:
		return toInt64(string(v))
	}
	return 0, errors.Errorf("cannot convert %T to an integer", raw)
}

func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, errors.Errorf("%v is not a whole number", f)
	}
	if f >= 1<<63 || f < -(1<<63) {
		return 0, errors.Errorf("%v overflows int64", f)
	}
	return int64(f), nil
}
