package signal

import (
	"errors"
	"testing"

	"quantanalysis/internal/fault"
	"quantanalysis/internal/indicator"
)

func allEnabled() map[string]bool {
	return map[string]bool{
		"rsi":            true,
		"moving_average": true,
		"bollinger":      true,
		"macd":           true,
	}
}

func TestNewConfig_DefaultsApplied(t *testing.T) {
	cfg, err := NewConfig(allEnabled(), Parameters{})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	p := cfg.Parameters()
	if p.RSI.Period != 14 || p.RSI.Overbought != 70 || p.RSI.Oversold != 30 {
		t.Errorf("RSI defaults: got %+v", p.RSI)
	}
	if p.MovingAverage.ShortWindow != 20 || p.MovingAverage.LongWindow != 50 {
		t.Errorf("MA defaults: got %+v", p.MovingAverage)
	}
	if p.Bollinger.Window != 20 || p.Bollinger.StdDev != 2.0 {
		t.Errorf("Bollinger defaults: got %+v", p.Bollinger)
	}
	if p.MACD.FastPeriod != 12 || p.MACD.SlowPeriod != 26 || p.MACD.SignalPeriod != 9 {
		t.Errorf("MACD defaults: got %+v", p.MACD)
	}
}

func TestNewConfig_RejectsOutOfRange(t *testing.T) {
	cases := []struct {
		name   string
		params Parameters
	}{
		{"rsi period low", Parameters{RSI: RSIParams{Period: 9}}},
		{"rsi period high", Parameters{RSI: RSIParams{Period: 31}}},
		{"rsi overbought low", Parameters{RSI: RSIParams{Overbought: 59}}},
		{"rsi overbought high", Parameters{RSI: RSIParams{Overbought: 81}}},
		{"rsi oversold low", Parameters{RSI: RSIParams{Oversold: 19}}},
		{"rsi oversold high", Parameters{RSI: RSIParams{Oversold: 41}}},
		{"ma short low", Parameters{MovingAverage: MovingAverageParams{ShortWindow: 4}}},
		{"ma short high", Parameters{MovingAverage: MovingAverageParams{ShortWindow: 51}}},
		{"ma long low", Parameters{MovingAverage: MovingAverageParams{LongWindow: 19}}},
		{"ma long high", Parameters{MovingAverage: MovingAverageParams{LongWindow: 201}}},
		{"bollinger window low", Parameters{Bollinger: BollingerParams{Window: 9}}},
		{"bollinger window high", Parameters{Bollinger: BollingerParams{Window: 51}}},
		{"bollinger std low", Parameters{Bollinger: BollingerParams{StdDev: 1.4}}},
		{"bollinger std high", Parameters{Bollinger: BollingerParams{StdDev: 3.1}}},
		{"macd fast low", Parameters{MACD: MACDParams{FastPeriod: 7}}},
		{"macd fast high", Parameters{MACD: MACDParams{FastPeriod: 27}}},
		{"macd slow low", Parameters{MACD: MACDParams{SlowPeriod: 11}}},
		{"macd slow high", Parameters{MACD: MACDParams{SlowPeriod: 51}}},
		{"macd signal low", Parameters{MACD: MACDParams{SignalPeriod: 4}}},
		{"macd signal high", Parameters{MACD: MACDParams{SignalPeriod: 21}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewConfig(allEnabled(), tc.params)
			var cfgErr *fault.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("got %v, want ConfigurationError", err)
			}
		})
	}
}

func TestNewConfig_DisabledGroupNotValidated(t *testing.T) {
	// rsi disabled: its out-of-range period must not be rejected
	enabled := map[string]bool{"rsi": false, "moving_average": true}
	params := Parameters{RSI: RSIParams{Period: 99}}

	cfg, err := NewConfig(enabled, params)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if cfg.Enabled(indicator.RSI) {
		t.Error("rsi should be disabled")
	}
	if !cfg.Enabled(indicator.MovingAverage) {
		t.Error("moving_average should be enabled")
	}
}

func TestNewConfig_UnknownIndicatorFails(t *testing.T) {
	_, err := NewConfig(map[string]bool{"ichimoku": true}, Parameters{})
	var cfgErr *fault.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigurationError for unknown indicator", err)
	}

	// Even a disabled unknown name is a configuration mistake
	_, err = NewConfig(map[string]bool{"ichimoku": false}, Parameters{})
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigurationError for unknown disabled indicator", err)
	}
}

func TestIndicatorSpec_CarriesParameters(t *testing.T) {
	cfg, err := NewConfig(allEnabled(), Parameters{
		RSI:           RSIParams{Period: 10, Overbought: 75, Oversold: 25},
		MovingAverage: MovingAverageParams{ShortWindow: 5, LongWindow: 20},
	})
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	spec := cfg.IndicatorSpec()
	if spec.RSIPeriod != 10 || spec.MAShortWindow != 5 || spec.MALongWindow != 20 {
		t.Errorf("spec parameters: got %+v", spec)
	}
	if len(spec.Enabled) != 4 {
		t.Errorf("enabled kinds: got %v", spec.Enabled)
	}
}

func TestSignal_Simplify(t *testing.T) {
	cases := map[Signal]Signal{
		Neutral:    Neutral,
		Buy:        Buy,
		Sell:       Sell,
		StrongBuy:  Buy,
		StrongSell: Sell,
	}
	for in, want := range cases {
		if got := in.Simplify(); got != want {
			t.Errorf("%s.Simplify() = %s, want %s", in, got, want)
		}
	}
	if StrongBuy.IsSimple() || !Buy.IsSimple() || !Neutral.IsSimple() {
		t.Error("IsSimple vocabulary check failed")
	}
}
