// Package duckdb implements the default storage.Engine on an embedded DuckDB
// database file. Parquet is loaded natively with read_parquet and tables are
// exported with COPY.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/marcboeker/go-duckdb/v2"
	"go.uber.org/zap"

	"dataco/internal/datasource/file"
	"dataco/internal/frame"
	"dataco/internal/storage"
)

// Engine is a DuckDB-backed storage.Engine.
type Engine struct {
	db  *sql.DB
	log *zap.Logger
}

var _ storage.Engine = (*Engine)(nil)

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database.
func Open(ctx context.Context, path string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if path != "" {
		if err := file.EnsureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("duckdb: ping %s: %w", path, err)
	}
	return &Engine{db: db, log: log}, nil
}

func init() {
	storage.Register("duckdb", func(ctx context.Context, cfg storage.Config) (storage.Engine, error) {
		e, err := Open(ctx, cfg.Path, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return e, nil
	})
}

func (e *Engine) exec(ctx context.Context, stmt string) error {
	if _, err := e.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("duckdb: %w", err)
	}
	return nil
}

// LoadParquet replaces table with the Parquet file's rows.
func (e *Engine) LoadParquet(ctx context.Context, table, path string) (int64, error) {
	if err := file.Intermediate(path, "aggregate").Require(); err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_parquet(%s)",
		storage.QuoteIdent(table), storage.QuoteLiteral(path))
	if err := e.exec(ctx, stmt); err != nil {
		return 0, err
	}
	var n int64
	if err := e.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+storage.QuoteIdent(table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb: count %s: %w", table, err)
	}
	e.log.Debug("parquet loaded", zap.String("table", table), zap.Int64("rows", n))
	return n, nil
}

// Materialize replaces table with the result of selectSQL.
func (e *Engine) Materialize(ctx context.Context, table, selectSQL string) error {
	return e.exec(ctx, fmt.Sprintf("CREATE OR REPLACE TABLE %s AS %s", storage.QuoteIdent(table), strings.TrimSpace(selectSQL)))
}

// ExportCSV copies table to path as comma-delimited text with a header.
func (e *Engine) ExportCSV(ctx context.Context, table, path string) error {
	if err := file.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return e.exec(ctx, fmt.Sprintf("COPY %s TO %s (HEADER, DELIMITER ',')",
		storage.QuoteIdent(table), storage.QuoteLiteral(path)))
}

// Query runs selectSQL and returns the result as a frame.
func (e *Engine) Query(ctx context.Context, selectSQL string) (*frame.Frame, error) {
	f, err := storage.QueryFrame(ctx, e.db, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("duckdb: query: %w", err)
	}
	return f, nil
}

// Close releases the database handle.
func (e *Engine) Close() error { return e.db.Close() }
