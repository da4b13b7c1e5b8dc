// Package config loads the analysis configuration from a YAML file, with
// documented defaults merged for missing keys and a small set of
// environment overrides for deploy-time paths.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"quantanalysis/internal/signal"
)

// Config is the full application configuration.
type Config struct {
	Indicators  IndicatorsConfig  `yaml:"indicators"`
	Signals     SignalsConfig     `yaml:"signals"`
	Backtesting BacktestingConfig `yaml:"backtesting"`
	Output      OutputConfig      `yaml:"output"`
	Cache       CacheConfig       `yaml:"cache"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Redis       RedisConfig       `yaml:"redis"`
}

// IndicatorsConfig selects which indicators the engine computes and with
// what parameters. The signal layer consumes the same parameter set, so
// the enabled map here is a superset of the signal-relevant indicators:
// columns can be computed for reporting without driving signals.
type IndicatorsConfig struct {
	Enabled    map[string]bool   `yaml:"enabled"`
	Parameters signal.Parameters `yaml:"parameters"`
}

// SignalsConfig selects which indicator conditions drive signals. When
// Enabled is empty, the indicators section's enabled map is used for
// signals too.
type SignalsConfig struct {
	Enabled map[string]bool `yaml:"enabled"`
}

// BacktestingConfig holds the replay parameters.
type BacktestingConfig struct {
	InitialCapital float64 `yaml:"initial_capital"`
	Commission     float64 `yaml:"commission"`
	RiskFreeRate   float64 `yaml:"risk_free_rate"`
}

// OutputConfig controls the flat-file report artifacts.
type OutputConfig struct {
	Dir         string `yaml:"dir"`
	WriteJSON   bool   `yaml:"write_json"`
	WriteTrades bool   `yaml:"write_trades"`
}

// CacheConfig controls the local sqlite bar cache.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TelemetryConfig controls the Prometheus metrics endpoint.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// RedisConfig controls the optional results publisher.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Default returns the configuration with every documented default applied
// and all indicators enabled.
func Default() *Config {
	return &Config{
		Indicators: IndicatorsConfig{
			Enabled: map[string]bool{
				"rsi":            true,
				"moving_average": true,
				"bollinger":      true,
				"macd":           true,
			},
		},
		Backtesting: BacktestingConfig{
			InitialCapital: 100000,
			Commission:     0.001,
			RiskFreeRate:   0.02,
		},
		Output: OutputConfig{
			Dir:         "results",
			WriteJSON:   true,
			WriteTrades: true,
		},
		Cache: CacheConfig{
			Path: "data/bars.db",
		},
		Telemetry: TelemetryConfig{
			Addr: ":9090",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// Load reads the YAML file at path and merges it over the defaults. A
// missing or empty file is an error: silently running on defaults when
// the user pointed at a config is worse than failing.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("config: %s is empty", path)
	}

	cfg := Default()
	// Unmarshal merges into a non-nil map; the file's enabled set must
	// replace the default, not union with it.
	cfg.Indicators.Enabled = nil
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// applyEnv layers deploy-time overrides over the file values.
func (c *Config) applyEnv() {
	c.Cache.Path = getEnv("QA_CACHE_PATH", c.Cache.Path)
	c.Telemetry.Addr = getEnv("QA_METRICS_ADDR", c.Telemetry.Addr)
	c.Redis.Addr = getEnv("QA_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("QA_REDIS_PASSWORD", c.Redis.Password)
}

// applyDefaults restores defaults zeroed out by explicit-but-empty YAML
// keys. Numeric zero is "not set" for these fields: a zero initial
// capital or empty output dir is never a meaningful configuration.
func (c *Config) applyDefaults() {
	def := Default()
	if c.Indicators.Enabled == nil {
		c.Indicators.Enabled = def.Indicators.Enabled
	}
	if c.Backtesting.InitialCapital == 0 {
		c.Backtesting.InitialCapital = def.Backtesting.InitialCapital
	}
	if c.Output.Dir == "" {
		c.Output.Dir = def.Output.Dir
	}
	if c.Cache.Path == "" {
		c.Cache.Path = def.Cache.Path
	}
	if c.Telemetry.Addr == "" {
		c.Telemetry.Addr = def.Telemetry.Addr
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
}

// SignalConfig validates the signal section into the core's config type.
// The signals.enabled map wins when present; otherwise the indicators map
// drives signal generation too.
func (c *Config) SignalConfig() (*signal.Config, error) {
	enabled := c.Signals.Enabled
	if len(enabled) == 0 {
		enabled = c.Indicators.Enabled
	}
	return signal.NewConfig(enabled, c.Indicators.Parameters)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
