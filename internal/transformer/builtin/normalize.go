package builtin

import (
	"strings"

	"dataco/internal/frame"
)

// NormalizeColumns rewrites column names into stable, SQL-friendly
// identifiers. Cell values are left untouched.
type NormalizeColumns struct{}

func (NormalizeColumns) Name() string { return "normalize_columns" }

func (NormalizeColumns) Apply(f *frame.Frame) (*frame.Frame, error) {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = NormalizeName(c)
	}
	return f, f.Rename(names)
}

var nameReplacer = strings.NewReplacer(
	" ", "_",
	"-", "_",
	"/", "_",
	"(", "",
	")", "",
)

// NormalizeName trims surrounding whitespace, maps space, hyphen, and slash
// to underscore, and drops parentheses. NormalizeName(NormalizeName(s)) ==
// NormalizeName(s).
func NormalizeName(s string) string {
	return nameReplacer.Replace(strings.TrimSpace(s))
}
