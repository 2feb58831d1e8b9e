package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// CopyFn abstracts an engine's bulk insert. Implementations insert the
// provided rows (aligned to columns) and return the number inserted. It must
// be safe for repeated calls and return promptly when ctx is done.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of batchSize and calls copyFn for each.
// It returns the total reported by copyFn and the first error encountered.
// Progress is logged at debug level after every batch.
func LoadBatches(
	ctx context.Context,
	log *zap.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var (
		total   int64
		batches int
		start   = time.Now()
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))
		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Warn("batch insert failed", zap.Int("batch", batches+1), zap.Int64("total_inserted", total), zap.Error(err))
			return total, err
		}
		batches++
		log.Debug("batch inserted",
			zap.Int("batch", batches),
			zap.Int64("inserted", n),
			zap.Int64("total_inserted", total),
			zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
		)
	}
	return total, nil
}
