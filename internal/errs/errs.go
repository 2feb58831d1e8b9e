// Package errs defines the fatal error taxonomy shared by the build and chart
// stages. Each type carries enough context to produce a diagnostic message and
// unwraps to its cause, so callers can use errors.As for the category and
// errors.Is for the underlying condition (e.g. os.ErrNotExist).
package errs

import (
	"fmt"
	"strings"
)

// UnreadableInputError reports that the raw CSV could not be decoded with any
// of the candidate text encodings.
type UnreadableInputError struct {
	Path      string
	Encodings []string
	Err       error
}

func (e *UnreadableInputError) Error() string {
	return fmt.Sprintf("unreadable input %s (tried encodings: %s): %v",
		e.Path, strings.Join(e.Encodings, ", "), e.Err)
}

func (e *UnreadableInputError) Unwrap() error { return e.Err }

// MissingIntermediateFileError reports that a file expected from an earlier
// stage is absent.
type MissingIntermediateFileError struct {
	Path  string
	Stage string
	Err   error
}

func (e *MissingIntermediateFileError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("missing intermediate file %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: missing intermediate file %s: %v", e.Stage, e.Path, e.Err)
}

func (e *MissingIntermediateFileError) Unwrap() error { return e.Err }

// QueryExecutionError reports an aggregation statement that failed against
// the loaded dataset.
type QueryExecutionError struct {
	Table string
	Err   error
}

func (e *QueryExecutionError) Error() string {
	return fmt.Sprintf("query for table %q failed: %v", e.Table, e.Err)
}

func (e *QueryExecutionError) Unwrap() error { return e.Err }

// RenderError reports a chart that could not be produced.
type RenderError struct {
	Chart string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Chart, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }
