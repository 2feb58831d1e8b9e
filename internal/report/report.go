// Package report renders the chart stage: it reads the exported KPI tables,
// draws one PNG per Chart, and copies the loss table to the report directory.
package report

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"dataco/internal/datasource/file"
	"dataco/internal/errs"
	"dataco/internal/frame"
	"dataco/internal/kpi"
	"dataco/internal/sink/csvout"
)

// stage names this component in missing-file errors.
const stage = "charts"

// LossTableFile is the report copy of loss_making_products.csv.
const LossTableFile = "loss_making_products_table.csv"

// Result lists the files written by Run.
type Result struct {
	Charts    []string
	LossTable string
	Headline  kpi.Headline
}

// Run reads every KPI CSV from outputsDir, then renders the charts and the
// loss table into reportsDir. All five inputs are read before anything is
// written, so a missing table fails the stage up front.
func Run(ctx context.Context, outputsDir, reportsDir string, opt Options, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	tables := make(map[string]*frame.Frame, len(kpi.Queries))
	for _, q := range kpi.Queries {
		f, err := csvout.ReadFile(ctx, kpi.CSVPath(outputsDir, q.Table), stage, nil)
		if err != nil {
			return nil, err
		}
		tables[q.Table] = f
	}

	head, err := kpi.HeadlineFromFrame(tables[kpi.Summary])
	if err != nil {
		return nil, err
	}
	log.Info("kpi summary", head.Fields()...)

	if err := file.EnsureDir(reportsDir); err != nil {
		return nil, err
	}
	res := &Result{Headline: head}
	for _, c := range Charts {
		bars, err := Slice(tables[c.Table], c)
		if err != nil {
			return nil, &errs.RenderError{Chart: c.File, Err: err}
		}
		path := filepath.Join(reportsDir, c.File)
		if err := Render(bars, c, opt, path); err != nil {
			return nil, err
		}
		log.Info("chart saved", zap.String("chart", c.File), zap.Int("bars", len(bars)), zap.String("path", path))
		res.Charts = append(res.Charts, path)
	}

	res.LossTable = filepath.Join(reportsDir, LossTableFile)
	if err := file.CopyFile(ctx, kpi.CSVPath(outputsDir, kpi.LossMakingProducts), res.LossTable, stage); err != nil {
		return nil, err
	}
	log.Info("table saved", zap.String("path", res.LossTable))
	return res, nil
}
