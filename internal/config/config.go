// Package config defines the runtime configuration shared by the build and
// chart binaries and derives every file path from a single project root.
//
// Values are resolved by viper in this order (highest first): command-line
// overrides applied by the caller, DATACO_* environment variables, an
// optional YAML/JSON config file, and the defaults below.
//
// Example (YAML):
//
//	root: /srv/dataco
//	engine: sqlite
//	encodings: [utf-8, windows-1252]
//	metrics:
//	  backend: pushgateway
//	  pushgateway_url: http://pushgateway:9091
//	log:
//	  level: debug
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"dataco/internal/parser/csv"
)

// EnvPrefix prefixes every environment override, e.g. DATACO_ROOT or
// DATACO_METRICS_BACKEND.
const EnvPrefix = "DATACO"

// Config is the fully resolved configuration.
type Config struct {
	// Root is the project directory all paths are derived from.
	Root string `mapstructure:"root"`

	// Dataset is the raw CSV file name under data/raw.
	Dataset string `mapstructure:"dataset"`

	// Name is the stem of the processed files and the database file.
	Name string `mapstructure:"name"`

	// Engine selects the registered storage engine ("duckdb", "sqlite").
	Engine string `mapstructure:"engine"`

	// Encodings is the ordered list of candidate input encodings.
	Encodings []string `mapstructure:"encodings"`

	// BatchSize bounds rows per insert transaction for row-loading engines.
	BatchSize int `mapstructure:"batch_size"`

	ChartDPI      int     `mapstructure:"chart_dpi"`
	ChartWidthIn  float64 `mapstructure:"chart_width_in"`
	ChartHeightIn float64 `mapstructure:"chart_height_in"`

	Metrics Metrics `mapstructure:"metrics"`
	Log     Log     `mapstructure:"log"`
}

// Metrics selects and configures the metrics backend.
type Metrics struct {
	// Backend is "none", "pushgateway" or "datadog".
	Backend        string `mapstructure:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr"`
	// Job labels every metric and is the Pushgateway grouping key.
	Job string `mapstructure:"job"`
}

// Log configures the zap logger.
type Log struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", ".")
	v.SetDefault("dataset", "DataCoSupplyChainDataset.csv")
	v.SetDefault("name", "dataco")
	v.SetDefault("engine", "duckdb")
	v.SetDefault("encodings", append([]string(nil), csv.DefaultEncodings...))
	v.SetDefault("batch_size", 5000)
	v.SetDefault("chart_dpi", 200)
	v.SetDefault("chart_width_in", 6.4)
	v.SetDefault("chart_height_in", 4.8)
	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.datadog_addr", "")
	v.SetDefault("metrics.job", "dataco")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return c
}

// Load resolves the configuration. An explicit cfgFile must exist. When
// cfgFile is empty, a "dataco.yaml" (or .json/.toml) is read if present,
// looked up first under root (the --root override, else $DATACO_ROOT) and
// then in the working directory.
func Load(cfgFile, root string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.SetConfigName("dataco")
		if root == "" {
			root = os.Getenv(EnvPrefix + "_ROOT")
		}
		if root != "" {
			v.AddConfigPath(root)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Paths holds every file and directory the pipeline touches.
type Paths struct {
	Root             string
	RawCSV           string
	ProcessedCSV     string
	ProcessedParquet string
	Database         string
	OutputsDir       string
	ReportsDir       string
	Manifest         string
}

// dbExt maps engine kinds to database file extensions.
var dbExt = map[string]string{
	"duckdb": ".duckdb",
	"sqlite": ".sqlite",
}

// Paths derives the pipeline layout from Root:
//
//	data/raw/<dataset>
//	data/processed/<name>_clean.{csv,parquet}
//	outputs/<name>.<engine ext>, outputs/*.csv, outputs/run_manifest.json
//	reports/*.png, reports/loss_making_products_table.csv
func (c Config) Paths() Paths {
	root := filepath.Clean(c.Root)
	processed := filepath.Join(root, "data", "processed")
	outputs := filepath.Join(root, "outputs")

	ext, ok := dbExt[c.Engine]
	if !ok {
		ext = "." + c.Engine
	}
	return Paths{
		Root:             root,
		RawCSV:           filepath.Join(root, "data", "raw", c.Dataset),
		ProcessedCSV:     filepath.Join(processed, c.Name+"_clean.csv"),
		ProcessedParquet: filepath.Join(processed, c.Name+"_clean.parquet"),
		Database:         filepath.Join(outputs, c.Name+ext),
		OutputsDir:       outputs,
		ReportsDir:       filepath.Join(root, "reports"),
		Manifest:         filepath.Join(outputs, "run_manifest.json"),
	}
}
