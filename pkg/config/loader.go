package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/codeprimate-software-archive/cp-common-sub005/pkg/commonerrors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CPCOMMON"

// Load builds a configuration from defaults, the optional YAML file at path
// and CPCOMMON_* environment variables, in increasing precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "read config").
				WithDetail("path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, commonerrors.Wrap(err, commonerrors.ErrorTypeConfig, "unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so environment overrides apply to keys
// absent from the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("factory.provider", d.Factory.Provider)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
	v.SetDefault("logging.encoding", d.Logging.Encoding)
	v.SetDefault("logging.output_paths", d.Logging.OutputPaths)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.addr", d.Metrics.Addr)

	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)

	v.SetDefault("export.format", d.Export.Format)
	v.SetDefault("export.compression", d.Export.Compression)
	v.SetDefault("export.level", d.Export.Level)

	v.SetDefault("sql.driver", d.SQL.Driver)
	v.SetDefault("sql.dsn", d.SQL.DSN)
	v.SetDefault("sql.table", d.SQL.Table)
}
