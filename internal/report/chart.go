package report

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"dataco/internal/datasource/file"
	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/kpi"
)

// Chart describes one horizontal bar chart drawn from a KPI table.
type Chart struct {
	File   string
	Table  string
	Limit  int // rows taken from the head of the table; 0 takes all
	Labels []string
	Metric string
	Title  string
	XLabel string
}

// Charts lists the rendered charts in render order.
var Charts = []Chart{
	{
		File:   "top_categories_profit.png",
		Table:  kpi.ProfitByCategory,
		Limit:  10,
		Labels: []string{"Category_Name"},
		Metric: "total_profit",
		Title:  "Top 10 Categories by Total Profit",
		XLabel: "Total Profit",
	},
	{
		File:   "late_delivery_by_region.png",
		Table:  kpi.LateByRegion,
		Limit:  15,
		Labels: []string{"Market", "Order_Region"},
		Metric: "late_delivery_rate",
		Title:  "Top 15 Market/Regions by Late Delivery Rate",
		XLabel: "Late Delivery Rate",
	},
	{
		File:   "late_delivery_by_shipping_mode.png",
		Table:  kpi.ShippingMode,
		Labels: []string{"Shipping_Mode"},
		Metric: "late_delivery_rate",
		Title:  "Late Delivery Rate by Shipping Mode",
		XLabel: "Late Delivery Rate",
	},
	{
		File:   "bottom_products_profit.png",
		Table:  kpi.LossMakingProducts,
		Limit:  15,
		Labels: []string{"Product_Name"},
		Metric: "total_profit",
		Title:  "Bottom 15 Products by Total Profit",
		XLabel: "Total Profit",
	},
}

// Bar is one plotted row. Null metrics sort after every value and draw as
// zero-length bars.
type Bar struct {
	Label string
	Value float64
	Null  bool
}

// Slice takes the chart's head slice of f and sorts it ascending by metric.
// The sort is stable, so rows with equal metrics keep their table order.
func Slice(f *frame.Frame, c Chart) ([]Bar, error) {
	if !f.Has(c.Metric) {
		return nil, fmt.Errorf("table %s has no column %q", c.Table, c.Metric)
	}
	for _, l := range c.Labels {
		if !f.Has(l) {
			return nil, fmt.Errorf("table %s has no column %q", c.Table, l)
		}
	}
	n := f.Len()
	if c.Limit > 0 && c.Limit < n {
		n = c.Limit
	}
	bars := make([]Bar, n)
	parts := make([]string, len(c.Labels))
	for r := 0; r < n; r++ {
		for i, l := range c.Labels {
			parts[i] = frame.Format(f.Value(r, l))
		}
		x, ok := frame.AsFloat(f.Value(r, c.Metric))
		bars[r] = Bar{Label: strings.Join(parts, " | "), Value: x, Null: !ok}
	}
	sort.SliceStable(bars, func(i, j int) bool {
		if bars[i].Null || bars[j].Null {
			return !bars[i].Null && bars[j].Null
		}
		return bars[i].Value < bars[j].Value
	})
	return bars, nil
}

// Options sets the output image geometry.
type Options struct {
	DPI      int
	WidthIn  float64
	HeightIn float64
}

// DefaultOptions renders 6.4x4.8 inch images at 200 DPI.
var DefaultOptions = Options{DPI: 200, WidthIn: 6.4, HeightIn: 4.8}

var barColor = color.RGBA{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}

// Render draws bars as a horizontal bar chart, first bar at the bottom, and
// writes a PNG to path. Every failure is a *errs.RenderError.
func Render(bars []Bar, c Chart, opt Options, path string) error {
	if len(bars) == 0 {
		return &errs.RenderError{Chart: c.File, Err: fmt.Errorf("no rows to plot from %s", c.Table)}
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel

	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Value
		labels[i] = b.Label
	}
	bc, err := plotter.NewBarChart(values, vg.Points(12))
	if err != nil {
		return &errs.RenderError{Chart: c.File, Err: err}
	}
	bc.Horizontal = true
	bc.Color = barColor
	bc.LineStyle.Width = vg.Length(0)
	p.Add(bc)
	p.NominalY(labels...)

	canvas := vgimg.NewWith(
		vgimg.UseWH(vg.Length(opt.WidthIn)*vg.Inch, vg.Length(opt.HeightIn)*vg.Inch),
		vgimg.UseDPI(opt.DPI),
	)
	p.Draw(draw.New(canvas))

	out, err := file.Create(path)
	if err != nil {
		return &errs.RenderError{Chart: c.File, Err: err}
	}
	if _, err := (vgimg.PngCanvas{Canvas: canvas}).WriteTo(out); err != nil {
		out.Close()
		return &errs.RenderError{Chart: c.File, Err: err}
	}
	if err := out.Close(); err != nil {
		return &errs.RenderError{Chart: c.File, Err: err}
	}
	return nil
}
