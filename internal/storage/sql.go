package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"strings"
	"time"

	"dataco/internal/frame"
)

// Querier is satisfied by *sql.DB, *sql.Conn, and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryFrame runs query and collects the result set into a frame. Column
// types are taken from the values: all-integer columns become Int, columns
// with any float become Float, anything else String.
func QueryFrame(ctx context.Context, q Querier, query string) (*frame.Frame, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	f := frame.New(cols)

	// kinds[i] collects which cell kinds column i has produced.
	const (
		kindInt = 1 << iota
		kindFloat
		kindOther
	)
	kinds := make([]int, len(cols))

	dest := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		row := make([]any, len(cols))
		for i, v := range dest {
			c := normalizeCell(v)
			row[i] = c
			switch c.(type) {
			case nil:
			case int64:
				kinds[i] |= kindInt
			case float64:
				kinds[i] |= kindFloat
			default:
				kinds[i] |= kindOther
			}
		}
		f.Rows = append(f.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i, k := range kinds {
		switch {
		case k&kindOther != 0:
			f.Types[i] = frame.String
			for _, row := range f.Rows {
				if row[i] != nil {
					row[i] = frame.Format(row[i])
				}
			}
		case k&kindFloat != 0:
			f.Types[i] = frame.Float
			for _, row := range f.Rows {
				if n, ok := row[i].(int64); ok {
					row[i] = float64(n)
				}
			}
		case k&kindInt != 0:
			f.Types[i] = frame.Int
		}
	}
	return f, nil
}

// normalizeCell maps driver values onto the frame cell types.
func normalizeCell(v any) any {
	switch x := v.(type) {
	case nil, int64, float64, string:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case float32:
		return float64(x)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case []byte:
		return string(x)
	case *big.Int:
		if x.IsInt64() {
			return x.Int64()
		}
		f, _ := new(big.Float).SetInt(x).Float64()
		return f
	case time.Time:
		return x.Format(time.DateTime)
	}
	return fmt.Sprint(v)
}

// QuoteIdent double-quotes an identifier for both engine dialects.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

// QuoteLiteral single-quotes a string literal for both engine dialects.
func QuoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
