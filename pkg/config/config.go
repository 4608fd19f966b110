// Package config holds the settings of applications built on the common
// library: which record factory provider to use, logging, metrics, tracing,
// export and SQL storage.
//
// Load reads an optional YAML file through viper and applies environment
// overrides prefixed with CPCOMMON, with dots in keys replaced by
// underscores:
//
//	CPCOMMON_FACTORY_PROVIDER=synchronized
//	CPCOMMON_EXPORT_FORMAT=jsonl
//
// LoadYAML and SaveYAML read and write a configuration file directly,
// substituting ${VAR} references from the environment on read.
package config

import (
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/logger"
)

// Config is the application configuration.
type Config struct {
	// Factory selects the record factory provider
	Factory FactoryConfig `mapstructure:"factory" yaml:"factory"`
	// Logging configures the process logger
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`
	// Metrics configures Prometheus table metrics
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	// Tracing configures OpenTelemetry tracing
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing"`
	// Export configures table export
	Export ExportConfig `mapstructure:"export" yaml:"export"`
	// SQL configures table storage in a database
	SQL SQLConfig `mapstructure:"sql" yaml:"sql"`
}

// FactoryConfig selects the record factory.
type FactoryConfig struct {
	// Provider names a provider of the factory registry
	Provider string `mapstructure:"provider" yaml:"provider"`
}

// MetricsConfig configures metrics collection.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	// Addr is the listen address of the metrics endpoint, empty to disable it
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// TracingConfig configures tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name"`
}

// ExportConfig configures table export.
type ExportConfig struct {
	// Format is one of csv, json, jsonl, avro or text
	Format string `mapstructure:"format" yaml:"format"`
	// Compression is one of none, gzip, zstd, snappy, s2 or lz4
	Compression string `mapstructure:"compression" yaml:"compression"`
	// Level is one of fastest, default, better or best
	Level string `mapstructure:"level" yaml:"level"`
}

// SQLConfig configures database storage.
type SQLConfig struct {
	// Driver is one of sqlite, postgres or mysql
	Driver string `mapstructure:"driver" yaml:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn"`
	// Table is the default table name
	Table string `mapstructure:"table" yaml:"table"`
}

// Default returns the configuration used for every unset key.
func Default() *Config {
	return &Config{
		Factory: FactoryConfig{Provider: "default"},
		Logging: logger.DefaultConfig(),
		Metrics: MetricsConfig{
			Namespace: "cpcommon",
		},
		Tracing: TracingConfig{
			SampleRate:  1.0,
			ServiceName: "rectable",
		},
		Export: ExportConfig{
			Format:      "csv",
			Compression: "none",
			Level:       "default",
		},
		SQL: SQLConfig{
			Driver: "sqlite",
			DSN:    "file::memory:?cache=shared",
			Table:  "records",
		},
	}
}

var (
	exportFormats = []string{"csv", "json", "jsonl", "avro", "text"}
	compressions  = []string{"", "none", "gzip", "zstd", "snappy", "s2", "lz4"}
	levels        = []string{"", "fastest", "default", "better", "best"}
	sqlDrivers    = []string{"sqlite", "postgres", "mysql"}
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Factory.Provider == "" {
		return commonerrors.New(commonerrors.ErrorTypeConfig, "factory provider is required")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return commonerrors.Newf(commonerrors.ErrorTypeConfig,
			"tracing sample rate must be between 0 and 1, got %g", c.Tracing.SampleRate)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return commonerrors.New(commonerrors.ErrorTypeConfig, "metrics namespace is required when metrics are enabled")
	}
	if err := oneOf("export format", c.Export.Format, exportFormats); err != nil {
		return err
	}
	if err := oneOf("export compression", c.Export.Compression, compressions); err != nil {
		return err
	}
	if err := oneOf("export level", c.Export.Level, levels); err != nil {
		return err
	}
	if err := oneOf("sql driver", c.SQL.Driver, sqlDrivers); err != nil {
		return err
	}
	return nil
}

func oneOf(what, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return commonerrors.Newf(commonerrors.ErrorTypeConfig, "invalid %s %q", what, value).
		WithDetail("allowed", allowed)
}
