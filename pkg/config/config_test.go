package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "default", cfg.Factory.Provider)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "sqlite", cfg.SQL.Driver)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no provider", func(c *Config) { c.Factory.Provider = "" }},
		{"sample rate", func(c *Config) { c.Tracing.SampleRate = 1.5 }},
		{"metrics namespace", func(c *Config) { c.Metrics.Enabled = true; c.Metrics.Namespace = "" }},
		{"format", func(c *Config) { c.Export.Format = "xml" }},
		{"compression", func(c *Config) { c.Export.Compression = "bzip2" }},
		{"level", func(c *Config) { c.Export.Level = "max" }},
		{"driver", func(c *Config) { c.SQL.Driver = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeConfig))
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	d := Default()
	assert.Equal(t, d.Factory, cfg.Factory)
	assert.Equal(t, d.Metrics, cfg.Metrics)
	assert.Equal(t, d.Tracing, cfg.Tracing)
	assert.Equal(t, d.Export, cfg.Export)
	assert.Equal(t, d.SQL, cfg.SQL)
	assert.Equal(t, d.Logging.Level, cfg.Logging.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rectable.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
factory:
  provider: synchronized
export:
  format: jsonl
  compression: zstd
tracing:
  sample_rate: 0.5
`), 0o600))

	t.Setenv("CPCOMMON_EXPORT_FORMAT", "avro")
	t.Setenv("CPCOMMON_METRICS_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "synchronized", cfg.Factory.Provider)
	assert.Equal(t, "avro", cfg.Export.Format)
	assert.Equal(t, "zstd", cfg.Export.Compression)
	assert.Equal(t, 0.5, cfg.Tracing.SampleRate)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "cpcommon", cfg.Metrics.Namespace)
	assert.Equal(t, "records", cfg.SQL.Table)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeConfig))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  format: xml\n"), 0o600))
	_, err = Load(path)
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeConfig))
}

func TestYAMLRoundTripWithEnvSubstitution(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.SQL.DSN = "${CPCOMMON_TEST_DSN}"
	require.NoError(t, SaveYAML(path, cfg))

	t.Setenv("CPCOMMON_TEST_DSN", "postgres://localhost/test")
	var loaded Config
	require.NoError(t, LoadYAML(path, &loaded))
	assert.Equal(t, "postgres://localhost/test", loaded.SQL.DSN)
	assert.Equal(t, cfg.Export, loaded.Export)

	err := LoadYAML(filepath.Join(dir, "missing.yaml"), &loaded)
	assert.True(t, commonerrors.IsType(err, commonerrors.ErrorTypeFile))
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("CPCOMMON_A", "x")
	assert.Equal(t, "x-x-", substituteEnvVars("${CPCOMMON_A}-${CPCOMMON_A}-${CPCOMMON_UNSET}"))
	assert.Equal(t, "open ${brace", substituteEnvVars("open ${brace"))
}
