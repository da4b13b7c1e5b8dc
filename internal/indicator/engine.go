package indicator

import (
	"quantanalysis/internal/fault"
	"quantanalysis/internal/model"
)

// Engine computes indicator tables from price series. It is stateless;
// each Compute call works on a private copy of the inputs and a fresh
// table, so one engine may serve many ticker runs.
type Engine struct{}

// NewEngine creates an indicator engine.
func NewEngine() *Engine { return &Engine{} }

// Compute derives all enabled indicator columns from the price series and
// returns them appended to the price columns in a date-aligned table.
// Disabled indicators are a no-op. The Spec's Enabled set is closed by
// construction (ParseKind), so an out-of-range Kind here is a programming
// error surfaced as a configuration error rather than a silent fallback.
func (e *Engine) Compute(series model.PriceSeries, spec Spec) (*Table, error) {
	if err := series.Validate(); err != nil {
		return nil, err
	}

	n := len(series)
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	closes := make([]float64, n)
	volume := make([]float64, n)
	for i, b := range series {
		open[i] = b.Open
		high[i] = b.High
		low[i] = b.Low
		closes[i] = b.Close
		volume[i] = b.Volume
	}

	t := NewTable(series.Dates())
	t.add(ColOpen, open)
	t.add(ColHigh, high)
	t.add(ColLow, low)
	t.add(ColClose, closes)
	t.add(ColVolume, volume)

	for _, kind := range spec.Enabled {
		switch kind {
		case RSI:
			t.add(ColRSI, computeRSI(closes, spec.RSIPeriod))
		case MovingAverage:
			short, long := computeMovingAverages(closes, spec.MAShortWindow, spec.MALongWindow)
			t.add(ColMAShort, short)
			t.add(ColMALong, long)
		case Bollinger:
			upper, lower := computeBollinger(closes, spec.BollingerWindow, spec.BollingerStdDev)
			t.add(ColBBUpper, upper)
			t.add(ColBBLower, lower)
		case MACD:
			macd, signalLine := computeMACD(closes, spec.MACDFastPeriod, spec.MACDSlowPeriod, spec.MACDSignalPeriod)
			t.add(ColMACD, macd)
			t.add(ColSignalLine, signalLine)
		default:
			return nil, fault.Configf(kind.String(), "no computation registered for indicator")
		}
	}

	return t, nil
}
