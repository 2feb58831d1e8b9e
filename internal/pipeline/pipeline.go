// Package pipeline runs the two batch stages end to end.
//
//	Build:  raw CSV → decode → normalize/coerce/derive/select
//	        → data/processed/*.csv + *.parquet
//	        → storage engine → five KPI tables → outputs/*.csv
//	Charts: outputs/*.csv → reports/*.png + loss table copy
//
// Stages share nothing but files, so Charts can run long after Build. Storage
// engines are looked up through the storage registry; the binaries blank
// import storage/all to register them.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"dataco/internal/config"
	"dataco/internal/frame"
	"dataco/internal/kpi"
	"dataco/internal/manifest"
	"dataco/internal/metrics"
	csvparser "dataco/internal/parser/csv"
	"dataco/internal/report"
	"dataco/internal/sink/csvout"
	"dataco/internal/sink/parquet"
	"dataco/internal/storage"
	"dataco/internal/transformer"
	"dataco/internal/transformer/builtin"
)

// Test seams; production code never reassigns these.
var (
	newEngineFn = storage.New
	nowFn       = time.Now
)

// BuildResult summarises a Build run.
type BuildResult struct {
	Manifest *manifest.Manifest
	Headline kpi.Headline
}

type runner struct {
	job string
	log *zap.Logger
}

// step times fn and records its outcome under name.
func (r runner) step(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	metrics.RecordStep(r.job, name, err, d)
	if err != nil {
		r.log.Error("step failed", zap.String("step", name), zap.Duration("took", d), zap.Error(err))
		return err
	}
	r.log.Debug("step done", zap.String("step", name), zap.Duration("took", d))
	return nil
}

// Build runs the loader/transformer and aggregator stages. The first error
// aborts the run; files written before it are left in place.
func Build(ctx context.Context, cfg config.Config, log *zap.Logger) (*BuildResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := runner{job: cfg.Metrics.Job, log: log}
	paths := cfg.Paths()
	man := manifest.New(cfg.Engine, nowFn())
	man.Input.Path = paths.RawCSV

	log.Info("build started",
		zap.String("run_id", man.RunID),
		zap.String("input", paths.RawCSV),
		zap.String("engine", cfg.Engine))

	// load
	var raw, clean *frame.Frame
	err := r.step(metrics.StepLoad, func() error {
		p := csvparser.NewParser(csvparser.Options{Encodings: cfg.Encodings, Logger: log})
		res, err := p.ParseFile(ctx, paths.RawCSV)
		if err != nil {
			return err
		}
		raw = res.Frame
		man.Input.Encoding = res.Encoding
		man.Raw = manifest.Shape{Rows: res.Frame.Len(), Columns: res.Frame.Width()}
		man.SkippedRows = res.Skipped
		man.ReplacedBytes = res.Replaced
		metrics.RecordRows(r.job, "raw", int64(res.Frame.Len()))
		metrics.RecordRows(r.job, "skipped", int64(res.Skipped))
		log.Info("raw data loaded",
			zap.String("encoding", res.Encoding),
			zap.Int("rows", man.Raw.Rows),
			zap.Int("columns", man.Raw.Columns),
			zap.Int("skipped_rows", res.Skipped),
			zap.Int("replaced_bytes", res.Replaced))

		fp, n, err := manifest.Fingerprint(ctx, paths.RawCSV)
		if err != nil {
			return err
		}
		man.Input.Fingerprint, man.Input.Bytes = fp, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	// transform
	err = r.step(metrics.StepTransform, func() error {
		sel := builtin.Select{}
		chain := transformer.Chain{
			builtin.NormalizeColumns{},
			builtin.Coerce{},
			builtin.Derive{},
			sel,
		}
		f, err := chain.Apply(raw)
		if err != nil {
			return err
		}
		if missing := sel.Missing(f); len(missing) > 0 {
			log.Warn("allow-listed columns absent from input", zap.Strings("columns", missing))
		}
		clean = f
		man.Clean = manifest.Shape{Rows: f.Len(), Columns: f.Width()}
		metrics.RecordRows(r.job, "clean", int64(f.Len()))
		log.Info("data transformed", zap.Int("rows", man.Clean.Rows), zap.Int("columns", man.Clean.Columns))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// persist
	err = r.step(metrics.StepPersist, func() error {
		if err := csvout.WriteFile(paths.ProcessedCSV, clean); err != nil {
			return fmt.Errorf("write processed csv: %w", err)
		}
		log.Info("saved", zap.String("path", paths.ProcessedCSV))
		if err := parquet.WriteFile(paths.ProcessedParquet, clean); err != nil {
			return fmt.Errorf("write processed parquet: %w", err)
		}
		log.Info("saved", zap.String("path", paths.ProcessedParquet))
		man.Outputs = append(man.Outputs, paths.ProcessedCSV, paths.ProcessedParquet)
		metrics.RecordFiles(r.job, 2)
		return nil
	})
	if err != nil {
		return nil, err
	}

	eng, err := newEngineFn(ctx, storage.Config{
		Kind:      cfg.Engine,
		Path:      paths.Database,
		BatchSize: cfg.BatchSize,
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s engine: %w", cfg.Engine, err)
	}
	closed := false
	defer func() {
		if !closed {
			eng.Close()
		}
	}()

	// aggregate
	err = r.step(metrics.StepAggregate, func() error {
		n, err := kpi.Load(ctx, eng, paths.ProcessedParquet)
		if err != nil {
			return err
		}
		man.LoadedRows = n
		metrics.RecordRows(r.job, "loaded", n)
		log.Info("parquet loaded", zap.String("table", kpi.SourceTable), zap.Int64("rows", n), zap.String("db", paths.Database))
		return kpi.Materialize(ctx, eng, log)
	})
	if err != nil {
		return nil, err
	}

	// export
	res := &BuildResult{Manifest: man}
	err = r.step(metrics.StepExport, func() error {
		written, err := kpi.Export(ctx, eng, paths.OutputsDir, log)
		man.Outputs = append(man.Outputs, written...)
		metrics.RecordFiles(r.job, int64(len(written)))
		if err != nil {
			return err
		}
		h, err := kpi.ReadHeadline(ctx, eng)
		if err != nil {
			return err
		}
		res.Headline = h
		log.Info("kpi summary", h.Fields()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	closed = true
	if err := eng.Close(); err != nil {
		return nil, fmt.Errorf("close %s engine: %w", cfg.Engine, err)
	}
	man.Outputs = append(man.Outputs, paths.Database)
	if err := man.WriteFile(paths.Manifest, nowFn()); err != nil {
		return nil, err
	}
	log.Info("build finished",
		zap.String("run_id", man.RunID),
		zap.Duration("took", man.FinishedAt.Sub(man.StartedAt)),
		zap.String("manifest", paths.Manifest))
	return res, nil
}

// Charts runs the chart renderer over the exported KPI tables.
func Charts(ctx context.Context, cfg config.Config, log *zap.Logger) (*report.Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := runner{job: cfg.Metrics.Job, log: log}
	paths := cfg.Paths()
	opt := report.Options{DPI: cfg.ChartDPI, WidthIn: cfg.ChartWidthIn, HeightIn: cfg.ChartHeightIn}

	var res *report.Result
	err := r.step(metrics.StepRender, func() error {
		var err error
		res, err = report.Run(ctx, paths.OutputsDir, paths.ReportsDir, opt, log)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordFiles(r.job, int64(len(res.Charts)+1))
	log.Info("charts finished", zap.Int("charts", len(res.Charts)), zap.String("dir", paths.ReportsDir))
	return res, nil
}
