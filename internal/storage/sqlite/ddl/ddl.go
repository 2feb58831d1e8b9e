// Package ddl renders SQLite DDL from the generic ddl.TableDef model.
//
// The builder here:
//   - Quotes identifiers with storage.QuoteIdent: "table", "col".
//   - Emits a plain CREATE TABLE; callers drop the previous table first.
package ddl

import (
	"fmt"
	"strings"

	gddl "dataco/internal/ddl"
	"dataco/internal/frame"
	"dataco/internal/storage"
)

// MapType maps a frame column type to a SQLite column affinity.
func MapType(t frame.Type) string {
	switch t {
	case frame.Int:
		return "INTEGER"
	case frame.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL returns a SQLite CREATE TABLE statement for t:
//
//	CREATE TABLE "table" (
//	  "col1" TYPE [NOT NULL],
//	  "col2" TYPE
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return "", fmt.Errorf("sqlite ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("sqlite ddl: at least one column is required")
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("sqlite ddl: column %s missing SQLType", c.Name)
		}
		def := storage.QuoteIdent(c.Name) + " " + typ
		if !c.Nullable {
			def += " NOT NULL"
		}
		cols = append(cols, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (\n  %s\n);", storage.QuoteIdent(name), strings.Join(cols, ",\n  ")), nil
}

// DropTableSQL returns a DROP TABLE IF EXISTS statement for name.
func DropTableSQL(name string) string {
	return "DROP TABLE IF EXISTS " + storage.QuoteIdent(name)
}
