package dataset

import (
	"errors"
	"fmt"
	"sort"
)

// Field describes one input of a record form.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
}

// FromRecord builds a one-row dataset from raw form values, one column per
// field in field order. Absent optional fields become nil.
func FromRecord(fields []Field, values map[string]string) (*Dataset, error) {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}

	var unknown []string
	for name := range values {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %v", ErrUnknownField, unknown)
	}

	ds := New()
	row := make([]any, 0, len(fields))
	for _, f := range fields {
		if err := ds.AddColumn(f.Name, f.Kind); err != nil {
			return nil, err
		}

		v, err := ParseValue(f.Kind, values[f.Name])
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Field = f.Name
			}
			return nil, err
		}
		if v == nil && f.Required {
			return nil, fmt.Errorf("%w: %q", ErrMissingField, f.Name)
		}
		row = append(row, v)
	}

	if err := ds.AppendRow(row...); err != nil {
		return nil, err
	}
	return ds, nil
}
