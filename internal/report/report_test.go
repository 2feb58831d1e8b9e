package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/kpi"
)

var testOptions = Options{DPI: 40, WidthIn: 6.4, HeightIn: 4.8}

var kpiFixtures = map[string]string{
	kpi.Summary: "total_rows,distinct_orders,total_sales,total_profit,avg_profit_margin,late_delivery_rate,avg_delivery_delay_days\n" +
		"3,3,150.0,8.0,0.0,0.3333333333333333,0.0\n",
	kpi.ProfitByCategory: "Category_Name,orders,total_sales,total_profit,avg_profit_margin,late_delivery_rate\n" +
		"Cleats,1,100.0,10.0,0.1,1.0\nGolf,1,0.0,3.0,,0.0\nFishing,1,50.0,-5.0,-0.1,0.0\n",
	kpi.LateByRegion: "Market,Order_Region,orders,late_delivery_rate,avg_delay_days\n" +
		"LATAM,Caribbean,1,1.0,2.0\nEurope,Western Europe,2,0.0,-1.0\n",
	kpi.ShippingMode: "Shipping_Mode,orders,late_delivery_rate,avg_delay_days,total_sales,total_profit,avg_profit_margin\n" +
		"Standard Class,2,0.5,1.0,150.0,5.0,0.0\nFirst Class,1,0.0,0.0,0.0,3.0,\n",
	kpi.LossMakingProducts: "Product_Name,Category_Name,orders,total_sales,total_profit,avg_profit_margin\n" +
		"Fishing rod,Fishing,1,50.0,-5.0,-0.1\nGolf ball,Golf,1,0.0,3.0,\nSmart watch,Cleats,1,100.0,10.0,0.1\n",
}

func writeFixtures(t *testing.T, skip string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "outputs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for table, body := range kpiFixtures {
		if table == skip {
			continue
		}
		require.NoError(t, os.WriteFile(kpi.CSVPath(dir, table), []byte(body), 0o644))
	}
	return dir
}

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestRun_WritesChartsAndTable(t *testing.T) {
	t.Parallel()

	outputs := writeFixtures(t, "")
	reports := filepath.Join(t.TempDir(), "reports")
	res, err := Run(context.Background(), outputs, reports, testOptions, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.Len(t, res.Charts, len(Charts))
	for i, c := range Charts {
		assert.Equal(t, filepath.Join(reports, c.File), res.Charts[i])
		b, err := os.ReadFile(res.Charts[i])
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(b, pngMagic), "%s is not a PNG", c.File)
	}

	got, err := os.ReadFile(res.LossTable)
	require.NoError(t, err)
	assert.Equal(t, kpiFixtures[kpi.LossMakingProducts], string(got))
	assert.EqualValues(t, 3, res.Headline.TotalRows)
	assert.InDelta(t, 8.0, res.Headline.TotalProfit, 1e-9)
}

func TestRun_MissingInput(t *testing.T) {
	t.Parallel()

	outputs := writeFixtures(t, kpi.LateByRegion)
	reports := filepath.Join(t.TempDir(), "reports")
	_, err := Run(context.Background(), outputs, reports, testOptions, nil)

	var mf *errs.MissingIntermediateFileError
	require.True(t, errors.As(err, &mf), "err = %v", err)
	assert.Equal(t, kpi.CSVPath(outputs, kpi.LateByRegion), mf.Path)
	_, statErr := os.Stat(reports)
	assert.True(t, os.IsNotExist(statErr), "reports dir should not be created before inputs are read")
}

func TestRun_EmptyTableIsRenderError(t *testing.T) {
	t.Parallel()

	outputs := writeFixtures(t, "")
	require.NoError(t, os.WriteFile(kpi.CSVPath(outputs, kpi.ProfitByCategory),
		[]byte("Category_Name,orders,total_sales,total_profit,avg_profit_margin,late_delivery_rate\n"), 0o644))

	_, err := Run(context.Background(), outputs, filepath.Join(t.TempDir(), "reports"), testOptions, nil)
	var re *errs.RenderError
	require.True(t, errors.As(err, &re), "err = %v", err)
	assert.Equal(t, "top_categories_profit.png", re.Chart)
}

/*
TestSlice_TableDriven checks the head limit, the ascending stable re-sort,
joined labels, and null metrics sorting last.
*/
func TestSlice_TableDriven(t *testing.T) {
	t.Parallel()

	f := &frame.Frame{
		Columns: []string{"Market", "Order_Region", "late_delivery_rate"},
		Types:   []frame.Type{frame.String, frame.String, frame.Float},
		Rows: [][]any{
			{"A", "r1", 0.9},
			{"B", "r2", nil},
			{"C", "r3", 0.5},
			{"D", "r4", 0.5},
			{"E", "r5", 0.1},
		},
	}
	base := Chart{Table: "t", Labels: []string{"Market", "Order_Region"}, Metric: "late_delivery_rate"}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{name: "all rows", limit: 0, want: []string{"E | r5", "C | r3", "D | r4", "A | r1", "B | r2"}},
		{name: "head 3", limit: 3, want: []string{"C | r3", "A | r1", "B | r2"}},
		{name: "limit above length", limit: 50, want: []string{"E | r5", "C | r3", "D | r4", "A | r1", "B | r2"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := base
			c.Limit = tt.limit
			bars, err := Slice(f, c)
			require.NoError(t, err)
			labels := make([]string, len(bars))
			for i, b := range bars {
				labels[i] = b.Label
			}
			assert.Equal(t, tt.want, labels)
			assert.True(t, bars[len(bars)-1].Null)
		})
	}
}

func TestSlice_MissingColumn(t *testing.T) {
	t.Parallel()

	_, err := Slice(frame.New([]string{"Category_Name"}), Charts[0])
	require.Error(t, err)
}

func TestRender_Empty(t *testing.T) {
	t.Parallel()

	err := Render(nil, Charts[2], testOptions, filepath.Join(t.TempDir(), "x.png"))
	var re *errs.RenderError
	require.True(t, errors.As(err, &re))
}
