// Package cli holds the flag handling shared by cmd/build and cmd/charts.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dataco/internal/config"
	"dataco/internal/logging"
	"dataco/internal/pipeline"
)

// ErrValidateOnly is returned by Setup when --validate was given and the
// configuration is valid; the command should exit 0 without running.
var ErrValidateOnly = errors.New("configuration is valid")

// Flags are the persistent flags every binary accepts.
type Flags struct {
	ConfigFile string
	Root       string
	Engine     string
	Validate   bool
	Verbose    bool
}

// Bind registers the flags on cmd. withEngine adds --engine.
func (f *Flags) Bind(cmd *cobra.Command, withEngine bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.ConfigFile, "config", "", "config file (default dataco.yaml under --root, then ./, if present)")
	fs.StringVar(&f.Root, "root", "", "project root; every path is derived from it (overrides config)")
	if withEngine {
		fs.StringVar(&f.Engine, "engine", "", "storage engine: duckdb or sqlite (overrides config)")
	}
	fs.BoolVar(&f.Validate, "validate", false, "validate the configuration and exit")
	fs.BoolVarP(&f.Verbose, "verbose", "v", false, "enable debug logs")
}

// Env is what a command needs to run.
type Env struct {
	Config config.Config
	Log    *zap.Logger
	// Close flushes metrics and syncs the logger.
	Close func()
}

// Setup loads and validates the configuration, applies flag overrides, and
// builds the logger and metrics backend. Validation errors are returned
// after every issue has been logged.
func Setup(cmd *cobra.Command, f Flags) (*Env, error) {
	fs := cmd.Flags()
	var root string
	if fs.Changed("root") {
		root = f.Root
	}
	cfg, err := config.Load(f.ConfigFile, root)
	if err != nil {
		return nil, err
	}
	if fs.Changed("root") {
		cfg.Root = f.Root
	}
	if fs.Changed("engine") {
		cfg.Engine = f.Engine
	}
	if f.Verbose {
		cfg.Log.Level = "debug"
	}

	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		// Fall back so the issues below still get reported.
		log, _ = logging.New("info", logging.FormatConsole)
	}

	issues := config.ValidateConfig(*cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			log.Error("config", zap.String("path", iss.Path), zap.String("issue", iss.Message))
		} else {
			log.Warn("config", zap.String("path", iss.Path), zap.String("issue", iss.Message))
		}
	}
	if err := config.FirstError(issues); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if f.Validate {
		log.Info("configuration is valid", zap.String("root", cfg.Paths().Root))
		return nil, ErrValidateOnly
	}

	flush, err := pipeline.SetupMetrics(cfg.Metrics, log)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config: *cfg,
		Log:    log,
		Close: func() {
			flush()
			_ = log.Sync()
		},
	}, nil
}
