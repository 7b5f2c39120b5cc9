package dataset

import (
	"errors"
	"fmt"
)

// ErrDuplicateColumn indicates a column name is already in use.
var ErrDuplicateColumn = errors.New("duplicate column")

// ErrRowWidth indicates a row does not have one value per column.
var ErrRowWidth = errors.New("row width mismatch")

// ErrValueKind indicates a value does not fit its column kind.
var ErrValueKind = errors.New("value does not match column kind")

// ErrUnknownField indicates a record carries a field the form does not define.
var ErrUnknownField = errors.New("unknown field")

// ErrMissingField indicates a required field has no value.
var ErrMissingField = errors.New("missing required field")

// ParseError represents a raw value that could not be parsed.
type ParseError struct {
	Field string
	Kind  Kind
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cannot parse %q as %s: %v", e.Value, e.Kind, e.Err)
	}
	return fmt.Sprintf("field %q: cannot parse %q as %s: %v", e.Field, e.Value, e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
