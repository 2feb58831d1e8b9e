// Package sqlite implements the SQLite-backed storage.Engine using
// database/sql and the pure-Go modernc driver. SQLite has no bulk-load API
// like DuckDB's read_parquet, so Parquet input is decoded through Arrow and
// inserted in batched transactions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	gddl "dataco/internal/ddl"
	"dataco/internal/frame"
	"dataco/internal/sink/csvout"
	"dataco/internal/sink/parquet"
	"dataco/internal/storage"
	sqliteddl "dataco/internal/storage/sqlite/ddl"
)

// Config holds SQLite engine configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite file path or connection string, e.g. "outputs/dataco.sqlite".
	DSN string

	// BatchSize bounds rows per insert transaction.
	BatchSize int

	Logger *zap.Logger
}

// Repository is the SQLite engine.
type Repository struct {
	db  *sql.DB
	cfg Config
	log *zap.Logger
}

var _ storage.Engine = (*Repository)(nil)

// NewRepository opens a SQLite database. Close releases it.
func NewRepository(ctx context.Context, cfg Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = storage.DefaultBatchSize
	}
	lg := cfg.Logger
	if lg == nil {
		lg = zap.NewNop()
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One connection per run.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db, cfg: cfg, log: lg}, nil
}

// CopyFrom inserts rows into table using a single transaction and a prepared
// INSERT statement. It returns the number of rows inserted. len(row) must
// equal len(columns) for every row.
func (r *Repository) CopyFrom(
	ctx context.Context,
	table string,
	columns []string,
	rows [][]any,
) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = storage.QuoteIdent(c)
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		storage.QuoteIdent(table),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("sqlite: insert: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// Exec executes an arbitrary SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, sql); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// LoadParquet decodes the Parquet file, recreates table from the inferred
// column types, and inserts every row.
func (r *Repository) LoadParquet(ctx context.Context, table, path string) (int64, error) {
	f, err := parquet.ReadFile(ctx, path, "aggregate")
	if err != nil {
		return 0, err
	}
	td, err := gddl.FromFrame(table, f, sqliteddl.MapType)
	if err != nil {
		return 0, err
	}
	create, err := sqliteddl.BuildCreateTableSQL(td)
	if err != nil {
		return 0, err
	}
	if err := r.Exec(ctx, sqliteddl.DropTableSQL(table)); err != nil {
		return 0, err
	}
	if err := r.Exec(ctx, create); err != nil {
		return 0, err
	}

	n, err := storage.LoadBatches(ctx, r.log, f.Columns, f.Rows, r.cfg.BatchSize,
		func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			return r.CopyFrom(ctx, table, columns, rows)
		})
	if err != nil {
		return n, err
	}
	r.log.Debug("parquet loaded", zap.String("table", table), zap.Int64("rows", n))
	return n, nil
}

// Materialize drops table and recreates it from selectSQL.
func (r *Repository) Materialize(ctx context.Context, table, selectSQL string) error {
	if err := r.Exec(ctx, sqliteddl.DropTableSQL(table)); err != nil {
		return err
	}
	return r.Exec(ctx, fmt.Sprintf("CREATE TABLE %s AS %s", storage.QuoteIdent(table), selectSQL))
}

// Query runs selectSQL and returns the result as a frame.
func (r *Repository) Query(ctx context.Context, selectSQL string) (*frame.Frame, error) {
	f, err := storage.QueryFrame(ctx, r.db, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	return f, nil
}

// ExportCSV reads table in rowid order and writes it with a header row.
func (r *Repository) ExportCSV(ctx context.Context, table, path string) error {
	f, err := r.Query(ctx, "SELECT * FROM "+storage.QuoteIdent(table)+" ORDER BY rowid")
	if err != nil {
		return err
	}
	return csvout.WriteFile(path, f)
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
