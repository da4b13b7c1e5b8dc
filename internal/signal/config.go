package signal

import (
	"quantanalysis/internal/fault"
	"quantanalysis/internal/indicator"
)

// Parameter defaults, applied for missing values before range checks.
const (
	DefaultRSIPeriod     = 14
	DefaultRSIOverbought = 70.0
	DefaultRSIOversold   = 30.0

	DefaultMAShortWindow = 20
	DefaultMALongWindow  = 50

	DefaultBollingerWindow = 20
	DefaultBollingerStdDev = 2.0

	DefaultMACDFastPeriod   = 12
	DefaultMACDSlowPeriod   = 26
	DefaultMACDSignalPeriod = 9
)

// RSIParams configures the RSI indicator and its signal thresholds.
type RSIParams struct {
	Period     int     `yaml:"period"`
	Overbought float64 `yaml:"overbought"`
	Oversold   float64 `yaml:"oversold"`
}

// MovingAverageParams configures the short/long simple moving averages.
type MovingAverageParams struct {
	ShortWindow int `yaml:"short_window"`
	LongWindow  int `yaml:"long_window"`
}

// BollingerParams configures the Bollinger Bands.
type BollingerParams struct {
	Window int     `yaml:"window"`
	StdDev float64 `yaml:"std_dev"`
}

// MACDParams configures the MACD spans.
type MACDParams struct {
	FastPeriod   int `yaml:"fast_period"`
	SlowPeriod   int `yaml:"slow_period"`
	SignalPeriod int `yaml:"signal_period"`
}

// Parameters groups per-indicator parameters. Zero values mean "not set"
// and fall back to the documented defaults.
type Parameters struct {
	RSI           RSIParams           `yaml:"rsi"`
	MovingAverage MovingAverageParams `yaml:"moving_average"`
	Bollinger     BollingerParams     `yaml:"bollinger"`
	MACD          MACDParams          `yaml:"macd"`
}

// Config is a validated signal-generation configuration. Build it with
// NewConfig; a Config that exists has already passed validation.
type Config struct {
	enabled []indicator.Kind
	params  Parameters
}

// NewConfig builds a Config from the enabled-indicator map and parameters.
// Unknown indicator names and out-of-range parameters fail immediately
// with a configuration error — values are never silently clamped. Only
// parameter groups whose indicator is enabled are validated.
func NewConfig(enabled map[string]bool, params Parameters) (*Config, error) {
	cfg := &Config{params: params}
	cfg.applyDefaults()

	for name, on := range enabled {
		kind, err := indicator.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if on {
			cfg.enabled = append(cfg.enabled, kind)
		}
	}
	// Deterministic order regardless of map iteration
	sortKinds(cfg.enabled)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	p := &c.params
	if p.RSI.Period == 0 {
		p.RSI.Period = DefaultRSIPeriod
	}
	if p.RSI.Overbought == 0 {
		p.RSI.Overbought = DefaultRSIOverbought
	}
	if p.RSI.Oversold == 0 {
		p.RSI.Oversold = DefaultRSIOversold
	}
	if p.MovingAverage.ShortWindow == 0 {
		p.MovingAverage.ShortWindow = DefaultMAShortWindow
	}
	if p.MovingAverage.LongWindow == 0 {
		p.MovingAverage.LongWindow = DefaultMALongWindow
	}
	if p.Bollinger.Window == 0 {
		p.Bollinger.Window = DefaultBollingerWindow
	}
	if p.Bollinger.StdDev == 0 {
		p.Bollinger.StdDev = DefaultBollingerStdDev
	}
	if p.MACD.FastPeriod == 0 {
		p.MACD.FastPeriod = DefaultMACDFastPeriod
	}
	if p.MACD.SlowPeriod == 0 {
		p.MACD.SlowPeriod = DefaultMACDSlowPeriod
	}
	if p.MACD.SignalPeriod == 0 {
		p.MACD.SignalPeriod = DefaultMACDSignalPeriod
	}
}

func (c *Config) validate() error {
	p := c.params
	if c.Enabled(indicator.RSI) {
		if p.RSI.Period < 10 || p.RSI.Period > 30 {
			return fault.Configf("rsi.period", "must be between 10 and 30, got %d", p.RSI.Period)
		}
		if p.RSI.Overbought < 60 || p.RSI.Overbought > 80 {
			return fault.Configf("rsi.overbought", "must be between 60 and 80, got %g", p.RSI.Overbought)
		}
		if p.RSI.Oversold < 20 || p.RSI.Oversold > 40 {
			return fault.Configf("rsi.oversold", "must be between 20 and 40, got %g", p.RSI.Oversold)
		}
	}
	if c.Enabled(indicator.MovingAverage) {
		if p.MovingAverage.ShortWindow < 5 || p.MovingAverage.ShortWindow > 50 {
			return fault.Configf("moving_average.short_window", "must be between 5 and 50, got %d", p.MovingAverage.ShortWindow)
		}
		if p.MovingAverage.LongWindow < 20 || p.MovingAverage.LongWindow > 200 {
			return fault.Configf("moving_average.long_window", "must be between 20 and 200, got %d", p.MovingAverage.LongWindow)
		}
	}
	if c.Enabled(indicator.Bollinger) {
		if p.Bollinger.Window < 10 || p.Bollinger.Window > 50 {
			return fault.Configf("bollinger.window", "must be between 10 and 50, got %d", p.Bollinger.Window)
		}
		if p.Bollinger.StdDev < 1.5 || p.Bollinger.StdDev > 3.0 {
			return fault.Configf("bollinger.std_dev", "must be between 1.5 and 3.0, got %g", p.Bollinger.StdDev)
		}
	}
	if c.Enabled(indicator.MACD) {
		if p.MACD.FastPeriod < 8 || p.MACD.FastPeriod > 26 {
			return fault.Configf("macd.fast_period", "must be between 8 and 26, got %d", p.MACD.FastPeriod)
		}
		if p.MACD.SlowPeriod < 12 || p.MACD.SlowPeriod > 50 {
			return fault.Configf("macd.slow_period", "must be between 12 and 50, got %d", p.MACD.SlowPeriod)
		}
		if p.MACD.SignalPeriod < 5 || p.MACD.SignalPeriod > 20 {
			return fault.Configf("macd.signal_period", "must be between 5 and 20, got %d", p.MACD.SignalPeriod)
		}
	}
	return nil
}

// Enabled reports whether the given indicator participates in signal
// generation.
func (c *Config) Enabled(kind indicator.Kind) bool {
	for _, k := range c.enabled {
		if k == kind {
			return true
		}
	}
	return false
}

// EnabledKinds returns the enabled indicators in deterministic order.
func (c *Config) EnabledKinds() []indicator.Kind {
	out := make([]indicator.Kind, len(c.enabled))
	copy(out, c.enabled)
	return out
}

// Parameters returns the effective parameters after defaults were applied.
func (c *Config) Parameters() Parameters { return c.params }

// IndicatorSpec builds the indicator engine spec for this configuration.
func (c *Config) IndicatorSpec() indicator.Spec {
	p := c.params
	return indicator.Spec{
		Enabled:          c.EnabledKinds(),
		RSIPeriod:        p.RSI.Period,
		MAShortWindow:    p.MovingAverage.ShortWindow,
		MALongWindow:     p.MovingAverage.LongWindow,
		BollingerWindow:  p.Bollinger.Window,
		BollingerStdDev:  p.Bollinger.StdDev,
		MACDFastPeriod:   p.MACD.FastPeriod,
		MACDSlowPeriod:   p.MACD.SlowPeriod,
		MACDSignalPeriod: p.MACD.SignalPeriod,
	}
}

func sortKinds(kinds []indicator.Kind) {
	for i := 1; i < len(kinds); i++ {
		for j := i; j > 0 && kinds[j] < kinds[j-1]; j-- {
			kinds[j], kinds[j-1] = kinds[j-1], kinds[j]
		}
	}
}
