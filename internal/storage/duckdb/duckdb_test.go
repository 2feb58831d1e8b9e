package duckdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/sink/csvout"
	"dataco/internal/sink/parquet"
	"dataco/internal/storage"
)

func openTemp(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(context.Background(), filepath.Join(t.TempDir(), "outputs", "test.duckdb"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func sampleParquet(t *testing.T) string {
	t.Helper()
	f := &frame.Frame{
		Columns: []string{"Order_Id", "Shipping_Mode", "late_delivery_flag"},
		Types:   []frame.Type{frame.Int, frame.String, frame.Int},
		Rows: [][]any{
			{int64(1), "Standard Class", int64(1)},
			{int64(2), "Standard Class", int64(0)},
			{int64(3), "First Class", int64(1)},
		},
	}
	p := filepath.Join(t.TempDir(), "clean.parquet")
	require.NoError(t, parquet.WriteFile(p, f))
	return p
}

func TestLoadMaterializeExport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e := openTemp(t)
	n, err := e.LoadParquet(ctx, "dataco", sampleParquet(t))
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	require.NoError(t, e.Materialize(ctx, "by_mode", `
		SELECT Shipping_Mode, AVG(late_delivery_flag) AS late_delivery_rate
		FROM dataco
		GROUP BY Shipping_Mode
		ORDER BY late_delivery_rate DESC NULLS LAST, Shipping_Mode ASC`))

	got, err := e.Query(ctx, `SELECT * FROM by_mode`)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shipping_Mode", "late_delivery_rate"}, got.Columns)
	assert.Equal(t, [][]any{{"First Class", 1.0}, {"Standard Class", 0.5}}, got.Rows)

	out := filepath.Join(t.TempDir(), "outputs", "by_mode.csv")
	require.NoError(t, e.ExportCSV(ctx, "by_mode", out))
	back, err := csvout.ReadFile(ctx, out, "test", []frame.Type{frame.String, frame.Float})
	require.NoError(t, err)
	assert.Equal(t, got.Rows, back.Rows)
}

func TestLoadParquet_Missing(t *testing.T) {
	t.Parallel()

	e := openTemp(t)
	_, err := e.LoadParquet(context.Background(), "dataco", filepath.Join(t.TempDir(), "gone.parquet"))
	var mf *errs.MissingIntermediateFileError
	require.True(t, errors.As(err, &mf), "err = %v", err)
}

func TestMaterialize_BadColumn(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	e := openTemp(t)
	_, err := e.LoadParquet(ctx, "dataco", sampleParquet(t))
	require.NoError(t, err)
	require.Error(t, e.Materialize(ctx, "broken", "SELECT SUM(No_Such_Column) FROM dataco"))
}

func TestRegistered(t *testing.T) {
	t.Parallel()

	eng, err := storage.New(context.Background(), storage.Config{Kind: "duckdb", Path: ""})
	require.NoError(t, err)
	require.NoError(t, eng.Close())
}
