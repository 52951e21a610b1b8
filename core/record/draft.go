package record

import "github.com/pkg/errors"

// Draft is a detached, editable copy of a Record or an empty template.
// A zero ID means the draft will create a new record on submit.
type Draft struct {
	ID     ID
	Values Values
}

// NewDraft returns an empty template: every declared field present and blank.
func NewDraft(s Schema) Draft {
	vals := make(Values, len(s.Fields))
	for _, f := range s.Fields {
		vals[f.Name] = ""
	}
	return Draft{Values: vals}
}

// Draft returns a shallow copy of r for editing.
func (r Record) Draft() Draft {
	return Draft{ID: r.ID, Values: r.Values.Copy()}
}

// IsNew reports whether the draft carries a create intent.
func (d Draft) IsNew() bool { return d.ID.IsZero() }

// Set assigns a raw field value, as typed by the user.
func (d *Draft) Set(s Schema, name string, value interface{}) error {
	if _, ok := s.Field(name); !ok || name == IDField {
		return errors.Wrapf(ErrUnknownField, "%s.%s", s.Collection, name)
	}
	if d.Values == nil {
		d.Values = make(Values)
	}
	d.Values[name] = value
	return nil
}

// Copy returns a draft that shares nothing mutable with d.
func (d Draft) Copy() Draft {
	return Draft{ID: d.ID, Values: d.Values.Copy()}
}
