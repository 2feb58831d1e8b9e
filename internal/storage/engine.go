// Package storage defines the embedded analytical engine contract and the
// registry concrete engines add themselves to.
//
// Engines register a Factory under a kind in their init functions; import
// dataco/internal/storage/all to make every built-in engine available:
//
//	import _ "dataco/internal/storage/all"
//
//	eng, err := storage.New(ctx, storage.Config{Kind: "duckdb", Path: "outputs/dataco.duckdb"})
//	if err != nil { ... }
//	defer eng.Close()
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"dataco/internal/frame"
)

// Engine is an in-process, file-backed SQL engine holding the cleaned dataset
// and the tables aggregated from it. One Engine is used by one run.
type Engine interface {
	// LoadParquet replaces table with the contents of the Parquet file at
	// path and returns the number of rows loaded.
	LoadParquet(ctx context.Context, table, path string) (int64, error)

	// Materialize replaces table with the result of selectSQL.
	Materialize(ctx context.Context, table, selectSQL string) error

	// ExportCSV writes every row of table to path with a header row.
	ExportCSV(ctx context.Context, table, path string) error

	// Query runs selectSQL and returns the result set as a frame.
	Query(ctx context.Context, selectSQL string) (*frame.Frame, error)

	Close() error
}

// Config selects and configures an engine.
type Config struct {
	// Kind is the registered engine name, e.g. "duckdb" or "sqlite".
	Kind string

	// Path is the database file. Engines create it when absent.
	Path string

	// BatchSize bounds rows per insert transaction for engines that load
	// row by row. Zero selects DefaultBatchSize.
	BatchSize int

	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// DefaultBatchSize is used when Config.BatchSize is zero.
const DefaultBatchSize = 5000

// Factory opens an engine for cfg.
type Factory func(ctx context.Context, cfg Config) (Engine, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for kind.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// Kinds returns the registered engine kinds, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// New opens the engine registered under cfg.Kind.
func New(ctx context.Context, cfg Config) (Engine, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown engine %q (registered: %v)", cfg.Kind, Kinds())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return f(ctx, cfg)
}
