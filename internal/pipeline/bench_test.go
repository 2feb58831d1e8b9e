package pipeline

import (
	"context"
	"fmt"
	"testing"

	"dataco/internal/frame"
	"dataco/internal/storage"
	"dataco/internal/transformer"
	"dataco/internal/transformer/builtin"
)

// BenchmarkTransformAndBatch exercises the in-memory hot path of a build:
// the transform chain over string cells, then batching into a fake insert.
// No file or database I/O is involved.
//
// Run with:
//
//	go test -run=^$ -bench ^BenchmarkTransformAndBatch$ -benchmem ./internal/pipeline
func BenchmarkTransformAndBatch(b *testing.B) {
	const rows = 10000
	ctx := context.Background()
	header := []string{
		"Order Id", "Category Name", "Market", "Order Region", "Sales",
		"Benefit per order", "Days for shipping (real)", "Days for shipment (scheduled)",
		"Shipping Mode", "Product Name",
	}
	copyFn := func(_ context.Context, _ []string, rows [][]any) (int64, error) {
		return int64(len(rows)), nil
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		f := frame.New(header)
		for r := 0; r < rows; r++ {
			f.Rows = append(f.Rows, []any{
				fmt.Sprint(r / 3), "Cleats", "LATAM", "Caribbean", "327.75",
				fmt.Sprint(r%40 - 10), fmt.Sprint(r % 6), "4",
				"Standard Class", "Perfect Fitness Perfect Rip Deck",
			})
		}
		b.StartTimer()

		out, err := transformer.Chain{
			builtin.NormalizeColumns{},
			builtin.Coerce{},
			builtin.Derive{},
			builtin.Select{},
		}.Apply(f)
		if err != nil {
			b.Fatalf("transform: %v", err)
		}
		n, err := storage.LoadBatches(ctx, nil, out.Columns, out.Rows, storage.DefaultBatchSize, copyFn)
		if err != nil {
			b.Fatalf("LoadBatches: %v", err)
		}
		if n != rows {
			b.Fatalf("loaded %d rows, want %d", n, rows)
		}
	}
}
