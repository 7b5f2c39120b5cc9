// Package dataset holds the in-memory tabular data appended to spreadsheet logs.
package dataset

import (
	"fmt"
	"time"
)

// Kind is the data type of a column.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindDate
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "text"
	}
}

// IsNumeric reports whether values of the kind are written as numbers.
func (k Kind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

// Column is a named, typed column. Values holds one entry per row;
// nil marks a missing value.
type Column struct {
	Name   string
	Kind   Kind
	Values []any
}

// Dataset is an ordered collection of uniquely named columns of equal length.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New creates an empty dataset.
func New() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// AddColumn adds an empty column. Columns can only be added while the
// dataset has no rows.
func (d *Dataset) AddColumn(name string, kind Kind) error {
	if _, exists := d.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
	}
	if d.rows > 0 {
		return fmt.Errorf("cannot add column %q to a dataset with %d rows", name, d.rows)
	}
	d.index[name] = len(d.columns)
	d.columns = append(d.columns, &Column{Name: name, Kind: kind})
	return nil
}

// AppendRow appends one row. Values are matched to columns by position and
// must fit the column kind; ints of any width are stored as int64.
func (d *Dataset) AppendRow(values ...any) error {
	if len(values) != len(d.columns) {
		return fmt.Errorf("%w: got %d values for %d columns", ErrRowWidth, len(values), len(d.columns))
	}

	normalized := make([]any, len(values))
	for i, v := range values {
		nv, err := normalize(d.columns[i].Kind, v)
		if err != nil {
			return fmt.Errorf("column %q: %w", d.columns[i].Name, err)
		}
		normalized[i] = nv
	}

	for i, col := range d.columns {
		col.Values = append(col.Values, normalized[i])
	}
	d.rows++
	return nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return d.rows
}

// Width returns the number of columns.
func (d *Dataset) Width() int {
	return len(d.columns)
}

// Columns returns the columns in order.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	for i, col := range d.columns {
		out[i] = *col
	}
	return out
}

// Column returns the i-th column.
func (d *Dataset) Column(i int) Column {
	return *d.columns[i]
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, col := range d.columns {
		names[i] = col.Name
	}
	return names
}

// Value returns the value at the given zero-based row and column.
func (d *Dataset) Value(row, col int) any {
	return d.columns[col].Values[row]
}

// Row returns a copy of the zero-based row.
func (d *Dataset) Row(i int) []any {
	row := make([]any, len(d.columns))
	for j, col := range d.columns {
		row[j] = col.Values[i]
	}
	return row
}

func normalize(kind Kind, v any) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch kind {
	case KindInt:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int8:
			return int64(n), nil
		case int16:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case uint8:
			return int64(n), nil
		case uint16:
			return int64(n), nil
		case uint32:
			return int64(n), nil
		}
	case KindFloat:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case KindDate, KindDateTime:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	case KindText:
		if s, ok := v.(string); ok {
			return s, nil
		}
		if s, ok := v.(fmt.Stringer); ok {
			return s.String(), nil
		}
	}

	return nil, fmt.Errorf("%w: %T is not a %s value", ErrValueKind, v, kind)
}
