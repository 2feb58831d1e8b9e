package builtin

import (
	"strings"

	"dataco/internal/frame"
)

// DefaultNullTokens are cell values read as missing in addition to the empty
// string. The list mirrors what common dataframe readers treat as NA.
var DefaultNullTokens = []string{
	"NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "NULL", "null", "None", "#N/A", "<NA>",
}

// Coerce assigns a logical type to every column and converts its cells.
//
// Types pins a column to "int", "float", or "string". Columns without a pin
// are detected from their non-null cells (see frame.Detect). Cells that fail
// to convert to a pinned numeric type become nil.
type Coerce struct {
	Types      map[string]string
	NullTokens []string
}

func (Coerce) Name() string { return "coerce" }

func (c Coerce) Apply(f *frame.Frame) (*frame.Frame, error) {
	tokens := c.NullTokens
	if tokens == nil {
		tokens = DefaultNullTokens
	}
	pins := make(map[string]frame.Type, len(c.Types))
	for name, s := range c.Types {
		if t, ok := parseType(s); ok {
			pins[name] = t
		}
	}
	if err := frame.Detect(f, pins, tokens); err != nil {
		return nil, err
	}
	return f, nil
}

func parseType(s string) (frame.Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer", "bigint":
		return frame.Int, true
	case "float", "double", "real":
		return frame.Float, true
	case "string", "text":
		return frame.String, true
	}
	return frame.String, false
}
