package signal

import (
	"quantanalysis/internal/fault"
	"quantanalysis/internal/indicator"
)

// Metadata records the configuration a signal series was generated with
// and the indicator columns that were present. Downstream consumers use
// it for audit output, never for decisions.
type Metadata struct {
	Enabled    []string   `json:"enabled"`
	Parameters Parameters `json:"parameters"`
	Columns    []string   `json:"columns"`
}

// Result is a generated signal series plus its metadata.
type Result struct {
	Signals  Series
	Metadata Metadata
}

// Generator derives a signal per timestamp from an indicator table.
// Every signal is a pure function of the current and immediately-prior
// indicator values (edge-triggered crossovers), so the generator carries
// no state between timestamps.
type Generator struct {
	cfg *Config
}

// NewGenerator creates a generator for a validated configuration.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{cfg: cfg}
}

// conditions holds the per-timestamp boolean inputs of the decision rule.
// Conditions of disabled indicators stay false. Comparisons against NaN
// warm-up values are false, so undefined windows yield NEUTRAL.
type conditions struct {
	maCrossUp, maCrossDown           bool
	rsiOverbought, rsiOversold       bool
	priceBelowLower, priceAboveUpper bool
	macdCrossUp, macdCrossDown       bool
}

// decide applies the combination rule. Strong signals take precedence
// over simple ones at the same timestamp.
func (c conditions) decide() Signal {
	switch {
	case c.maCrossUp && c.rsiOversold && c.priceBelowLower && c.macdCrossUp:
		return StrongBuy
	case c.maCrossDown && c.rsiOverbought && c.priceAboveUpper && c.macdCrossDown:
		return StrongSell
	case c.maCrossUp || c.macdCrossUp:
		return Buy
	case c.maCrossDown || c.macdCrossDown:
		return Sell
	default:
		return Neutral
	}
}

// Generate produces the signal series aligned to the table's date index.
func (g *Generator) Generate(table *indicator.Table) (*Result, error) {
	closes, err := g.column(table, indicator.ColClose)
	if err != nil {
		return nil, err
	}

	var maShort, maLong, rsi, bbUpper, bbLower, macd, sigLine []float64
	if g.cfg.Enabled(indicator.MovingAverage) {
		if maShort, err = g.column(table, indicator.ColMAShort); err != nil {
			return nil, err
		}
		if maLong, err = g.column(table, indicator.ColMALong); err != nil {
			return nil, err
		}
	}
	if g.cfg.Enabled(indicator.RSI) {
		if rsi, err = g.column(table, indicator.ColRSI); err != nil {
			return nil, err
		}
	}
	if g.cfg.Enabled(indicator.Bollinger) {
		if bbUpper, err = g.column(table, indicator.ColBBUpper); err != nil {
			return nil, err
		}
		if bbLower, err = g.column(table, indicator.ColBBLower); err != nil {
			return nil, err
		}
	}
	if g.cfg.Enabled(indicator.MACD) {
		if macd, err = g.column(table, indicator.ColMACD); err != nil {
			return nil, err
		}
		if sigLine, err = g.column(table, indicator.ColSignalLine); err != nil {
			return nil, err
		}
	}

	p := g.cfg.Parameters()
	values := make([]Signal, table.Len())
	for i := 0; i < table.Len(); i++ {
		var c conditions
		if maShort != nil && i > 0 {
			c.maCrossUp = maShort[i] > maLong[i] && maShort[i-1] <= maLong[i-1]
			c.maCrossDown = maShort[i] < maLong[i] && maShort[i-1] >= maLong[i-1]
		}
		if rsi != nil {
			c.rsiOverbought = rsi[i] > p.RSI.Overbought
			c.rsiOversold = rsi[i] < p.RSI.Oversold
		}
		if bbUpper != nil {
			c.priceAboveUpper = closes[i] > bbUpper[i]
			c.priceBelowLower = closes[i] < bbLower[i]
		}
		if macd != nil && i > 0 {
			c.macdCrossUp = macd[i] > sigLine[i] && macd[i-1] <= sigLine[i-1]
			c.macdCrossDown = macd[i] < sigLine[i] && macd[i-1] >= sigLine[i-1]
		}
		values[i] = c.decide()
	}

	enabled := make([]string, 0, len(g.cfg.EnabledKinds()))
	for _, k := range g.cfg.EnabledKinds() {
		enabled = append(enabled, k.String())
	}

	return &Result{
		Signals: Series{Dates: table.Dates(), Values: values},
		Metadata: Metadata{
			Enabled:    enabled,
			Parameters: p,
			Columns:    table.Columns(),
		},
	}, nil
}

func (g *Generator) column(table *indicator.Table, name string) ([]float64, error) {
	col, ok := table.Column(name)
	if !ok {
		return nil, fault.Validationf("indicator table is missing column %s", name)
	}
	return col, nil
}
