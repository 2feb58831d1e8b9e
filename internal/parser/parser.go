// Package parser defines the contract shared by raw-input parsers.
package parser

import (
	"context"

	"dataco/internal/frame"
)

// Result is a parsed input plus the facts the loader reports about it.
type Result struct {
	// Frame holds every decoded row; cells are strings or nil.
	Frame *frame.Frame

	// Encoding is the candidate encoding that was accepted.
	Encoding string

	// Skipped counts rows dropped for parse errors or excess fields.
	Skipped int

	// Replaced counts byte sequences decoded as U+FFFD.
	Replaced int
}

// Parser turns a file on disk into a Result.
type Parser interface {
	ParseFile(ctx context.Context, path string) (*Result, error)
}
