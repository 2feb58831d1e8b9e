// Package frame holds the in-memory tabular model passed between the loader,
// the transformers, and the file sinks. A Frame is a small column-ordered
// table: each column has a name and a logical type, and each cell is one of
// nil, int64, float64, or string.
package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Type is the logical type of a column.
type Type int

const (
	// String columns hold text cells.
	String Type = iota
	// Int columns hold int64 cells.
	Int
	// Float columns hold float64 cells.
	Float
)

func (t Type) String() string {
	switch t {
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "string"
	}
}

// Frame is an ordered set of named, typed columns stored row-major.
type Frame struct {
	Columns []string
	Types   []Type
	Rows    [][]any
}

// New returns an empty frame with the given columns, all typed String.
func New(columns []string) *Frame {
	cols := append([]string(nil), columns...)
	return &Frame{
		Columns: cols,
		Types:   make([]Type, len(cols)),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.Rows) }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.Columns) }

// Index returns the position of column name, or -1 when absent.
func (f *Frame) Index(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the frame has a column called name.
func (f *Frame) Has(name string) bool { return f.Index(name) >= 0 }

// Value returns the cell at (row, column name). Unknown columns yield nil.
func (f *Frame) Value(row int, name string) any {
	i := f.Index(name)
	if i < 0 {
		return nil
	}
	return f.Rows[row][i]
}

// Column returns a copy of every cell in column name.
func (f *Frame) Column(name string) ([]any, error) {
	i := f.Index(name)
	if i < 0 {
		return nil, fmt.Errorf("frame: unknown column %q", name)
	}
	out := make([]any, len(f.Rows))
	for r, row := range f.Rows {
		out[r] = row[i]
	}
	return out, nil
}

// Append adds a row. The row must have exactly Width() cells.
func (f *Frame) Append(row []any) error {
	if len(row) != len(f.Columns) {
		return fmt.Errorf("frame: row has %d cells, want %d", len(row), len(f.Columns))
	}
	f.Rows = append(f.Rows, row)
	return nil
}

// SetColumn adds column name with the given values, or replaces it when it
// already exists. len(values) must equal Len().
func (f *Frame) SetColumn(name string, t Type, values []any) error {
	if len(values) != len(f.Rows) {
		return fmt.Errorf("frame: column %q has %d values, want %d", name, len(values), len(f.Rows))
	}
	if i := f.Index(name); i >= 0 {
		f.Types[i] = t
		for r := range f.Rows {
			f.Rows[r][i] = values[r]
		}
		return nil
	}
	f.Columns = append(f.Columns, name)
	f.Types = append(f.Types, t)
	for r := range f.Rows {
		f.Rows[r] = append(f.Rows[r], values[r])
	}
	return nil
}

// Rename replaces every column name. len(names) must equal Width().
func (f *Frame) Rename(names []string) error {
	if len(names) != len(f.Columns) {
		return fmt.Errorf("frame: rename with %d names, want %d", len(names), len(f.Columns))
	}
	copy(f.Columns, names)
	return nil
}

// Select returns a new frame holding only the named columns, in the order
// given. Every name must exist.
func (f *Frame) Select(names []string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j := f.Index(n)
		if j < 0 {
			return nil, fmt.Errorf("frame: select unknown column %q", n)
		}
		idx[i] = j
	}
	out := &Frame{
		Columns: append([]string(nil), names...),
		Types:   make([]Type, len(names)),
		Rows:    make([][]any, len(f.Rows)),
	}
	for i, j := range idx {
		out.Types[i] = f.Types[j]
	}
	for r, row := range f.Rows {
		nr := make([]any, len(idx))
		for i, j := range idx {
			nr[i] = row[j]
		}
		out.Rows[r] = nr
	}
	return out, nil
}

// AsFloat converts a numeric cell to float64. Strings, nil, and NaN report
// ok=false: text is never read as a number once a column is typed.
func AsFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	}
	return 0, false
}

// AsInt converts an integral cell to int64. Floats are accepted only when
// they have no fractional part.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return 0, false
		}
		return int64(x), true
	}
	return 0, false
}

// Format renders a cell for text output. nil renders as the empty string.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		if math.IsNaN(x) {
			return ""
		}
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		if x {
			return "1"
		}
		return "0"
	}
	return fmt.Sprint(v)
}
