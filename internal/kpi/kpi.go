// Package kpi holds the five fixed aggregation queries over the cleaned
// dataset and runs them against a storage.Engine: load the Parquet file,
// materialize every KPI table in order, then export each to CSV.
//
// The SQL is written in the dialect subset shared by DuckDB and SQLite. Sums
// are cast to DOUBLE so integer inputs do not widen to HUGEINT on DuckDB, and
// every ORDER BY breaks ties on the group key so output is deterministic.
package kpi

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/storage"
)

// SourceTable is the table the cleaned dataset is loaded into.
const SourceTable = "dataco"

// LossLimit caps the loss_making_products table.
const LossLimit = 25

// Table names, in build and export order.
const (
	Summary            = "kpi_summary"
	ProfitByCategory   = "profit_by_category"
	LateByRegion       = "late_by_region"
	ShippingMode       = "shipping_mode_performance"
	LossMakingProducts = "loss_making_products"
)

// Query is one named aggregate.
type Query struct {
	Table string
	SQL   string
}

// Queries lists the KPI tables in build and export order.
var Queries = []Query{
	{Summary, `
SELECT
    COUNT(*) AS total_rows,
    COUNT(DISTINCT Order_Id) AS distinct_orders,
    CAST(SUM(Sales) AS DOUBLE) AS total_sales,
    CAST(SUM(Benefit_per_order) AS DOUBLE) AS total_profit,
    AVG(profit_margin) AS avg_profit_margin,
    AVG(late_delivery_flag) AS late_delivery_rate,
    AVG(delivery_delay_days) AS avg_delivery_delay_days
FROM dataco`},

	{ProfitByCategory, `
SELECT
    Category_Name,
    COUNT(DISTINCT Order_Id) AS orders,
    CAST(SUM(Sales) AS DOUBLE) AS total_sales,
    CAST(SUM(Benefit_per_order) AS DOUBLE) AS total_profit,
    AVG(profit_margin) AS avg_profit_margin,
    AVG(late_delivery_flag) AS late_delivery_rate
FROM dataco
GROUP BY Category_Name
ORDER BY total_profit DESC NULLS LAST, Category_Name ASC NULLS LAST`},

	{LateByRegion, `
SELECT
    Market,
    Order_Region,
    COUNT(DISTINCT Order_Id) AS orders,
    AVG(late_delivery_flag) AS late_delivery_rate,
    AVG(delivery_delay_days) AS avg_delay_days
FROM dataco
GROUP BY Market, Order_Region
ORDER BY late_delivery_rate DESC NULLS LAST, Market ASC NULLS LAST, Order_Region ASC NULLS LAST`},

	{ShippingMode, `
SELECT
    Shipping_Mode,
    COUNT(DISTINCT Order_Id) AS orders,
    AVG(late_delivery_flag) AS late_delivery_rate,
    AVG(delivery_delay_days) AS avg_delay_days,
    CAST(SUM(Sales) AS DOUBLE) AS total_sales,
    CAST(SUM(Benefit_per_order) AS DOUBLE) AS total_profit,
    AVG(profit_margin) AS avg_profit_margin
FROM dataco
GROUP BY Shipping_Mode
ORDER BY late_delivery_rate DESC NULLS LAST, Shipping_Mode ASC NULLS LAST`},

	{LossMakingProducts, fmt.Sprintf(`
SELECT
    Product_Name,
    Category_Name,
    COUNT(DISTINCT Order_Id) AS orders,
    CAST(SUM(Sales) AS DOUBLE) AS total_sales,
    CAST(SUM(Benefit_per_order) AS DOUBLE) AS total_profit,
    AVG(profit_margin) AS avg_profit_margin
FROM dataco
GROUP BY Product_Name, Category_Name
ORDER BY total_profit ASC NULLS LAST, Product_Name ASC NULLS LAST, Category_Name ASC NULLS LAST
LIMIT %d`, LossLimit)},
}

// CSVPath returns the export path of table under dir.
func CSVPath(dir, table string) string {
	return filepath.Join(dir, table+".csv")
}

// Load replaces SourceTable with the Parquet file at path. Engine failures
// are reported as *errs.QueryExecutionError; a missing file keeps its
// *errs.MissingIntermediateFileError.
func Load(ctx context.Context, eng storage.Engine, path string) (int64, error) {
	n, err := eng.LoadParquet(ctx, SourceTable, path)
	if err != nil {
		var mf *errs.MissingIntermediateFileError
		if errors.As(err, &mf) {
			return 0, err
		}
		return 0, &errs.QueryExecutionError{Table: SourceTable, Err: err}
	}
	return n, nil
}

// Materialize creates or replaces every KPI table, in Queries order. The
// first failure stops the run.
func Materialize(ctx context.Context, eng storage.Engine, log *zap.Logger) error {
	for _, q := range Queries {
		if err := eng.Materialize(ctx, q.Table, q.SQL); err != nil {
			return &errs.QueryExecutionError{Table: q.Table, Err: err}
		}
		log.Debug("table materialized", zap.String("table", q.Table))
	}
	return nil
}

// Export writes every KPI table to dir/<table>.csv, in Queries order, and
// returns the written paths.
func Export(ctx context.Context, eng storage.Engine, dir string, log *zap.Logger) ([]string, error) {
	paths := make([]string, 0, len(Queries))
	for _, q := range Queries {
		p := CSVPath(dir, q.Table)
		if err := eng.ExportCSV(ctx, q.Table, p); err != nil {
			return paths, &errs.QueryExecutionError{Table: q.Table, Err: err}
		}
		log.Info("exported", zap.String("table", q.Table), zap.String("path", p))
		paths = append(paths, p)
	}
	return paths, nil
}

// Headline is the single kpi_summary row. Null aggregates read as zero.
type Headline struct {
	TotalRows            int64
	DistinctOrders       int64
	TotalSales           float64
	TotalProfit          float64
	AvgProfitMargin      float64
	LateDeliveryRate     float64
	AvgDeliveryDelayDays float64
}

// ReadHeadline queries kpi_summary from eng.
func ReadHeadline(ctx context.Context, eng storage.Engine) (Headline, error) {
	f, err := eng.Query(ctx, "SELECT * FROM "+storage.QuoteIdent(Summary))
	if err != nil {
		return Headline{}, &errs.QueryExecutionError{Table: Summary, Err: err}
	}
	return HeadlineFromFrame(f)
}

// HeadlineFromFrame reads the first row of a kpi_summary frame, whether it
// came from the engine or from the exported CSV.
func HeadlineFromFrame(f *frame.Frame) (Headline, error) {
	if f.Len() == 0 {
		return Headline{}, fmt.Errorf("kpi: %s has no rows", Summary)
	}
	num := func(col string) float64 {
		x, _ := frame.AsFloat(f.Value(0, col))
		return x
	}
	return Headline{
		TotalRows:            int64(num("total_rows")),
		DistinctOrders:       int64(num("distinct_orders")),
		TotalSales:           num("total_sales"),
		TotalProfit:          num("total_profit"),
		AvgProfitMargin:      num("avg_profit_margin"),
		LateDeliveryRate:     num("late_delivery_rate"),
		AvgDeliveryDelayDays: num("avg_delivery_delay_days"),
	}, nil
}

// Fields renders h as structured log fields.
func (h Headline) Fields() []zap.Field {
	return []zap.Field{
		zap.Int64("total_rows", h.TotalRows),
		zap.Int64("distinct_orders", h.DistinctOrders),
		zap.Float64("total_sales", h.TotalSales),
		zap.Float64("total_profit", h.TotalProfit),
		zap.Float64("avg_profit_margin", h.AvgProfitMargin),
		zap.Float64("late_delivery_rate", h.LateDeliveryRate),
		zap.Float64("avg_delivery_delay_days", h.AvgDeliveryDelayDays),
	}
}
