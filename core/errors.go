package core

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by backends when no record matches the requested ID.
var ErrNotFound = errors.New("record not found")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return fmt.Sprintf("%s: %s", err.Fields[0].Field, err.Fields[0].Error)
		}
		return ""
	}
	return err.Err.Error()
}

// FieldNames lists the offending fields in reporting order.
func (err ValidationError) FieldNames() []string {
	names := make([]string, 0, len(err.Fields))
	for _, f := range err.Fields {
		names = append(names, f.Field)
	}
	return names
}

// FetchError reports that a collection could not be retrieved.
type FetchError struct {
	Collection string
	Err        error
}

func NewFetchError(collection string, err error) error {
	return &FetchError{Collection: collection, Err: err}
}

func (err *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", err.Collection, err.Err)
}

func (err *FetchError) Cause() error { return err.Err }
func (err *FetchError) Unwrap() error { return err.Err }

// Mutation actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// MutationError reports that a create, update or delete was rejected or could not reach the backend.
type MutationError struct {
	Collection string
	Action     string
	ID         int64 // zero for creates
	Err        error
}

func NewMutationError(collection, action string, id int64, err error) error {
	return &MutationError{Collection: collection, Action: action, ID: id, Err: err}
}

func (err *MutationError) Error() string {
	if err.ID != 0 {
		return fmt.Sprintf("%s %s #%d: %v", err.Action, err.Collection, err.ID, err.Err)
	}
	return fmt.Sprintf("%s %s: %v", err.Action, err.Collection, err.Err)
}

func (err *MutationError) Cause() error { return err.Err }
func (err *MutationError) Unwrap() error { return err.Err }

func IsFetchFailed(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func IsMutationFailed(err error) bool {
	var me *MutationError
	return errors.As(err, &me)
}

func IsValidationFailed(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
