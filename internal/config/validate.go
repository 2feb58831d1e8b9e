package config

// This file is a small static linter for Config values. It never touches the
// filesystem; missing inputs are reported by the stages themselves.

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap/zapcore"

	"dataco/internal/parser/csv"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is logged and the run continues.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is the dotted config key (e.g. "metrics.pushgateway_url",
// "encodings[1]"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be returned directly.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// FirstError returns the first SeverityError issue, or nil.
func FirstError(issues []Issue) error {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return iss
		}
	}
	return nil
}

// KnownEngines lists the storage engines the binaries register.
var KnownEngines = []string{"duckdb", "sqlite"}

// ValidateConfig performs static validation of c and returns every issue
// found. It does not mutate c.
func ValidateConfig(c Config) []Issue {
	var issues []Issue
	issues = append(issues, validateLayout(c)...)
	issues = append(issues, validateEngine(c)...)
	issues = append(issues, validateEncodings(c.Encodings)...)
	issues = append(issues, validateCharts(c)...)
	issues = append(issues, validateMetrics(c.Metrics)...)
	issues = append(issues, validateLog(c.Log)...)
	return issues
}

func validateLayout(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Root) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "root",
			Message:  "root must not be empty",
		})
	}
	if strings.TrimSpace(c.Dataset) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "dataset",
			Message:  "dataset must name the raw CSV file under data/raw",
		})
	}
	name := strings.TrimSpace(c.Name)
	switch {
	case name == "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  "name must not be empty; it is the stem of every processed file",
		})
	case name != filepath.Base(name):
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "name",
			Message:  fmt.Sprintf("name %q must not contain path separators", name),
		})
	}
	return issues
}

func validateEngine(c Config) []Issue {
	var issues []Issue

	if strings.TrimSpace(c.Engine) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "engine",
			Message:  "engine must not be empty",
		})
		return issues
	}
	known := false
	for _, k := range KnownEngines {
		if k == c.Engine {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "engine",
			Message:  fmt.Sprintf("unknown engine %q; expected one of %s", c.Engine, strings.Join(KnownEngines, ", ")),
		})
	}
	if c.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the engine default will be used", c.BatchSize),
		})
	}
	return issues
}

func validateEncodings(encs []string) []Issue {
	if len(encs) == 0 {
		return []Issue{{
			Severity: SeverityError,
			Path:     "encodings",
			Message:  "at least one candidate encoding is required",
		}}
	}
	var issues []Issue
	for i, name := range encs {
		if _, err := csv.LookupEncoding(name); err != nil {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     fmt.Sprintf("encodings[%d]", i),
				Message:  err.Error(),
			})
		}
	}
	return issues
}

func validateCharts(c Config) []Issue {
	var issues []Issue

	switch {
	case c.ChartDPI <= 0:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chart_dpi",
			Message:  "chart_dpi must be positive",
		})
	case c.ChartDPI > 600:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "chart_dpi",
			Message:  fmt.Sprintf("chart_dpi=%d produces very large images", c.ChartDPI),
		})
	}
	if c.ChartWidthIn <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chart_width_in",
			Message:  "chart_width_in must be positive",
		})
	}
	if c.ChartHeightIn <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "chart_height_in",
			Message:  "chart_height_in must be positive",
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue

	switch m.Backend {
	case "", "none":
		return nil
	case "pushgateway":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend requires a gateway URL",
			})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires a DogStatsD address",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; expected none, pushgateway or datadog", m.Backend),
		})
		return issues
	}
	if strings.TrimSpace(m.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.job",
			Message:  "metrics.job is empty; the backend default job name will be used",
		})
	}
	return issues
}

func validateLog(l Log) []Issue {
	var issues []Issue

	if _, err := zapcore.ParseLevel(l.Level); err != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.level",
			Message:  err.Error(),
		})
	}
	switch strings.ToLower(l.Format) {
	case "", "console", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "log.format",
			Message:  fmt.Sprintf("unknown log format %q; expected console or json", l.Format),
		})
	}
	return issues
}
