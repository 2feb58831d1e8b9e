// Package all wires every built-in engine into the storage registry.
//
// It exists purely for side effects: importing it runs the init functions of
// each concrete engine, which register their factories with the storage
// package. After importing it the following kinds are available:
//
//   - "duckdb" (dataco/internal/storage/duckdb), the default
//   - "sqlite" (dataco/internal/storage/sqlite)
//
// A binary that needs only one engine can import that package directly
// instead.
package all

import (
	_ "dataco/internal/storage/duckdb"
	_ "dataco/internal/storage/sqlite"
)
