// Package ddl defines a small, dialect-neutral model of a table definition and
// derives one from a frame. Dialect packages (e.g. storage/sqlite/ddl) render
// it to SQL.
package ddl

import (
	"fmt"
	"strings"

	"dataco/internal/frame"
)

// ColumnDef describes one column. Name is unquoted; quoting happens at render
// time. SQLType is the dialect type (e.g. INTEGER, REAL, TEXT).
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
}

// TableDef is a table name and its ordered columns.
type TableDef struct {
	Name    string
	Columns []ColumnDef
}

// TypeMapper maps a frame column type to a dialect column type.
type TypeMapper func(frame.Type) string

// FromFrame derives a TableDef named name with one nullable column per frame
// column, in frame order.
func FromFrame(name string, f *frame.Frame, mapType TypeMapper) (TableDef, error) {
	if strings.TrimSpace(name) == "" {
		return TableDef{}, fmt.Errorf("ddl: table name must not be empty")
	}
	if f.Width() == 0 {
		return TableDef{}, fmt.Errorf("ddl: table %s: at least one column is required", name)
	}
	td := TableDef{Name: name, Columns: make([]ColumnDef, f.Width())}
	for i, c := range f.Columns {
		if strings.TrimSpace(c) == "" {
			return TableDef{}, fmt.Errorf("ddl: table %s: column %d has an empty name", name, i)
		}
		td.Columns[i] = ColumnDef{Name: c, SQLType: mapType(f.Types[i]), Nullable: true}
	}
	return td, nil
}
