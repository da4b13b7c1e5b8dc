// Package backtest replays a signal series against price history through
// a position state machine, producing a returns series, a trade ledger,
// and performance metrics.
package backtest

import (
	"math"
	"time"

	"quantanalysis/internal/fault"
	"quantanalysis/internal/signal"
	"quantanalysis/internal/stats"
)

// Config holds the backtesting parameters.
type Config struct {
	InitialCapital float64
	Commission     float64 // per unit of position change, e.g. 0.001 = 0.1%
	RiskFreeRate   float64 // annualized
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapital: 100000,
		Commission:     0.001,
		RiskFreeRate:   0.02,
	}
}

// Result is owned exclusively by the caller once Run returns; the
// backtester keeps no reference to it.
type Result struct {
	// Dates is the full input index; Positions[i] is the position decided
	// at Dates[i].
	Dates     []time.Time
	Positions []int

	// Returns[i] is the strategy return realized over the period ending
	// at Dates[i+1]: the position held during the period times the price
	// change, minus commission on any position change in that period. The
	// first period has no prior price and is dropped.
	Returns []float64

	Trades  []Trade
	Metrics map[string]float64

	// OpenPosition is true when the series ends with a position still
	// held. That interval is not in Trades and its unrealized move is not
	// in Returns beyond the last bar.
	OpenPosition bool
}

// ReturnDates returns the dates the Returns series is aligned to.
func (r *Result) ReturnDates() []time.Time {
	if len(r.Dates) == 0 {
		return nil
	}
	return r.Dates[1:]
}

// Backtester replays one ticker's signals against its prices. It is
// single-use state-free: every Run computes from scratch, so one value
// may be reused across calls but never needs to be.
type Backtester struct {
	dates   []time.Time
	prices  []float64
	signals signal.Series
	cfg     Config
}

// New creates a backtester over close prices and a simplified signal
// series. Inputs are validated in Run, before any computation.
func New(dates []time.Time, prices []float64, signals signal.Series, cfg Config) *Backtester {
	return &Backtester{dates: dates, prices: prices, signals: signals, cfg: cfg}
}

// Run validates the inputs, folds the signal series into positions,
// computes net returns, reconstructs the trade ledger, and attaches the
// metrics report. No partial results: a validation failure returns before
// any computation.
func (b *Backtester) Run() (*Result, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	positions := b.generatePositions()
	returns := b.calculateReturns(positions)
	trades, openPos := b.tradeHistory(positions)

	return &Result{
		Dates:        b.dates,
		Positions:    positions,
		Returns:      returns,
		Trades:       trades,
		Metrics:      stats.New(returns, b.cfg.RiskFreeRate).Report(),
		OpenPosition: openPos,
	}, nil
}

func (b *Backtester) validate() error {
	if len(b.prices) == 0 {
		return fault.Validationf("empty price series")
	}
	if len(b.prices) != len(b.dates) {
		return fault.Validationf("prices and dates must have same length: %d vs %d", len(b.prices), len(b.dates))
	}
	if len(b.prices) != b.signals.Len() {
		return fault.Validationf("prices and signals must have same length: %d vs %d", len(b.prices), b.signals.Len())
	}
	if len(b.signals.Dates) != b.signals.Len() {
		return fault.Validationf("signal series dates and values must have same length")
	}
	for i, d := range b.signals.Dates {
		if !d.Equal(b.dates[i]) {
			return fault.Validationf("signal index differs from price index at %d: %s vs %s",
				i, d.Format(time.RFC3339), b.dates[i].Format(time.RFC3339))
		}
	}
	for i := 1; i < len(b.dates); i++ {
		if !b.dates[i].After(b.dates[i-1]) {
			return fault.Validationf("timestamps not strictly increasing at index %d", i)
		}
	}
	for i, s := range b.signals.Values {
		if !s.IsSimple() {
			return fault.Validationf("signal %s at index %d: backtester accepts only BUY/SELL/NEUTRAL (simplify strong signals first)", s, i)
		}
	}
	return nil
}

// generatePositions folds the signal series through the transition rule.
func (b *Backtester) generatePositions() []int {
	positions := make([]int, len(b.signals.Values))
	pos := Flat
	for i, sig := range b.signals.Values {
		pos = NextPosition(pos, sig)
		positions[i] = pos
	}
	return positions
}

// calculateReturns computes per-period strategy returns: the position
// held during the period (decided at the previous bar) times the price
// change, minus commission on the position change landing this period.
// Position changes never earn the same bar's move (no same-bar fill).
func (b *Backtester) calculateReturns(positions []int) []float64 {
	if len(b.prices) < 2 {
		return nil
	}
	returns := make([]float64, len(b.prices)-1)
	for t := 1; t < len(b.prices); t++ {
		pct := b.prices[t]/b.prices[t-1] - 1
		r := float64(positions[t-1]) * pct

		change := math.Abs(float64(positions[t] - positions[t-1]))
		r -= change * b.cfg.Commission

		returns[t-1] = r
	}
	return returns
}

// tradeHistory reconstructs the discrete trade ledger from the position
// series. A position still held at the end of the series is reported as
// open rather than force-closed.
func (b *Backtester) tradeHistory(positions []int) ([]Trade, bool) {
	l := &ledger{}
	for i, pos := range positions {
		l.step(b.dates[i], b.prices[i], pos)
	}
	return l.trades, l.open()
}
