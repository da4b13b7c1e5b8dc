package config

import (
	"os"
	"path/filepath"
	"testing"

	"quantanalysis/internal/indicator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
indicators:
  enabled:
    rsi: true
    moving_average: true
backtesting:
  commission: 0.002
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backtesting.Commission != 0.002 {
		t.Errorf("commission = %v, want 0.002", cfg.Backtesting.Commission)
	}
	if cfg.Backtesting.InitialCapital != 100000 {
		t.Errorf("initial capital = %v, want default 100000", cfg.Backtesting.InitialCapital)
	}
	if cfg.Backtesting.RiskFreeRate != 0.02 {
		t.Errorf("risk free rate = %v, want default 0.02", cfg.Backtesting.RiskFreeRate)
	}
	if cfg.Output.Dir != "results" {
		t.Errorf("output dir = %q, want default", cfg.Output.Dir)
	}
}

func TestLoadExplicitZeroCommission(t *testing.T) {
	path := writeConfig(t, `
backtesting:
  commission: 0
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backtesting.Commission != 0 {
		t.Errorf("commission = %v, want explicit 0", cfg.Backtesting.Commission)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEmptyFileFails(t *testing.T) {
	path := writeConfig(t, "")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestLoadMalformedYAMLFails(t *testing.T) {
	path := writeConfig(t, "indicators: [not: a map")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed yaml")
	}
}

func TestSignalConfigFromIndicators(t *testing.T) {
	path := writeConfig(t, `
indicators:
  enabled:
    rsi: true
    macd: false
  parameters:
    rsi:
      period: 21
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, err := cfg.SignalConfig()
	if err != nil {
		t.Fatalf("SignalConfig: %v", err)
	}
	if !sc.Enabled(indicator.RSI) {
		t.Error("rsi should be enabled")
	}
	if sc.Enabled(indicator.MACD) {
		t.Error("macd should be disabled")
	}
	// The file's enabled map replaces the default set.
	if sc.Enabled(indicator.MovingAverage) {
		t.Error("moving_average was not in the file's enabled map")
	}
	if got := sc.Parameters().RSI.Period; got != 21 {
		t.Errorf("rsi period = %d, want 21", got)
	}
	// Unset parameters fall back to documented defaults.
	if got := sc.Parameters().RSI.Overbought; got != 70 {
		t.Errorf("rsi overbought = %v, want default 70", got)
	}
}

func TestSignalConfigSignalsSectionWins(t *testing.T) {
	path := writeConfig(t, `
indicators:
  enabled:
    rsi: true
    moving_average: true
signals:
  enabled:
    moving_average: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sc, err := cfg.SignalConfig()
	if err != nil {
		t.Fatalf("SignalConfig: %v", err)
	}
	if sc.Enabled(indicator.RSI) {
		t.Error("signals section should override indicators map")
	}
	if !sc.Enabled(indicator.MovingAverage) {
		t.Error("moving_average should be enabled")
	}
}

func TestSignalConfigUnknownIndicatorFails(t *testing.T) {
	path := writeConfig(t, `
indicators:
  enabled:
    stochastic: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := cfg.SignalConfig(); err == nil {
		t.Fatal("expected error for unknown indicator name")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("QA_CACHE_PATH", "/tmp/override.db")
	t.Setenv("QA_REDIS_ADDR", "redis.internal:6379")

	path := writeConfig(t, `
cache:
  path: data/from-file.db
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Path != "/tmp/override.db" {
		t.Errorf("cache path = %q, want env override", cfg.Cache.Path)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("redis addr = %q, want env override", cfg.Redis.Addr)
	}
}
