// Package config loads bridgectl configuration from a YAML file, BRIDGE_*
// environment variables and defaults, in increasing order of precedence
// for environment over file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	bridgeerrors "github.com/wippyai/script-bridge/errors"
)

// EnvPrefix prefixes environment overrides, e.g. BRIDGE_LOOP_INTERVAL.
const EnvPrefix = "BRIDGE"

// Config is the complete bridgectl configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Loop     LoopConfig     `mapstructure:"loop" yaml:"loop"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Workload WorkloadConfig `mapstructure:"workload" yaml:"workload"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

// LoopConfig tunes the UI loop.
type LoopConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// MetricsConfig controls the Prometheus endpoint. An empty address disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// WorkloadConfig shapes the simulated scripting workload.
type WorkloadConfig struct {
	Contexts     int           `mapstructure:"contexts" yaml:"contexts"`
	Objects      int           `mapstructure:"objects" yaml:"objects"`
	ReleaseRatio float64       `mapstructure:"release_ratio" yaml:"release_ratio"`
	CollectRatio float64       `mapstructure:"collect_ratio" yaml:"collect_ratio"`
	Seed         uint64        `mapstructure:"seed" yaml:"seed"`
	SettleWait   time.Duration `mapstructure:"settle_wait" yaml:"settle_wait"`
}

// SetDefaults installs the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("loop.interval", "16ms")
	v.SetDefault("metrics.addr", "")
	v.SetDefault("workload.contexts", 4)
	v.SetDefault("workload.objects", 1000)
	v.SetDefault("workload.release_ratio", 0.6)
	v.SetDefault("workload.collect_ratio", 0.2)
	v.SetDefault("workload.seed", 1)
	v.SetDefault("workload.settle_wait", "5s")
}

// New returns a viper instance with defaults and environment binding set up.
// If path is not empty the file is read as YAML.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, bridgeerrors.Wrap(bridgeerrors.PhaseConfig, bridgeerrors.KindInvalidInput, err,
				fmt.Sprintf("read config %s", path))
		}
	}
	return v, nil
}

// Load reads the configuration at path (optional) and validates it.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, bridgeerrors.Wrap(bridgeerrors.PhaseConfig, bridgeerrors.KindInvalidInput, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error
	invalid := func(format string, args ...any) {
		errs = append(errs, bridgeerrors.InvalidInput(bridgeerrors.PhaseConfig, fmt.Sprintf(format, args...)))
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		invalid("log.level %q is not a zap level", c.Log.Level)
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		invalid("log.format must be json or console, got %q", c.Log.Format)
	}
	if c.Loop.Interval <= 0 {
		invalid("loop.interval must be positive, got %s", c.Loop.Interval)
	}
	if c.Workload.Contexts < 1 {
		invalid("workload.contexts must be at least 1, got %d", c.Workload.Contexts)
	}
	if c.Workload.Objects < 0 {
		invalid("workload.objects must not be negative, got %d", c.Workload.Objects)
	}
	if c.Workload.ReleaseRatio < 0 || c.Workload.CollectRatio < 0 ||
		c.Workload.ReleaseRatio+c.Workload.CollectRatio > 1 {
		invalid("workload.release_ratio and workload.collect_ratio must be non-negative and sum to at most 1")
	}
	if c.Workload.SettleWait < 0 {
		invalid("workload.settle_wait must not be negative, got %s", c.Workload.SettleWait)
	}

	return errors.Join(errs...)
}

// Logger builds the zap logger described by the log section.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var zc zap.Config
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
