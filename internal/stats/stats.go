// Package stats computes risk and return statistics from a return series.
//
// The functions are total: ill-defined ratios produce NaN or ±Inf instead
// of failing, so empty and single-value series are safe. Dispersion uses
// the sample standard deviation (ddof=1); skewness and kurtosis are the
// bias-adjusted estimators, with kurtosis reported as excess kurtosis.
package stats

import "math"

// Report keys, fixed across runs.
const (
	KeyTotalReturn          = "total_return"
	KeyAnnualizedReturn     = "annualized_return"
	KeyAnnualizedVolatility = "annualized_volatility"
	KeySharpeRatio          = "sharpe_ratio"
	KeySortinoRatio         = "sortino_ratio"
	KeyMaxDrawdown          = "max_drawdown"
	KeyCalmarRatio          = "calmar_ratio"
	KeyWinRate              = "win_rate"
	KeyProfitFactor         = "profit_factor"
	KeySkewness             = "skewness"
	KeyKurtosis             = "kurtosis"
)

// DefaultPeriodsPerYear assumes daily bars over trading days.
const DefaultPeriodsPerYear = 252

// Metrics computes performance statistics over a return series. NaN
// entries are dropped at construction.
type Metrics struct {
	returns  []float64
	riskFree float64 // annualized risk-free rate
	periods  float64 // periods per year
}

// New creates a Metrics over the given returns and annualized risk-free
// rate, assuming DefaultPeriodsPerYear periods per year.
func New(returns []float64, riskFreeRate float64) *Metrics {
	return NewWithPeriods(returns, riskFreeRate, DefaultPeriodsPerYear)
}

// NewWithPeriods creates a Metrics with an explicit periods-per-year.
func NewWithPeriods(returns []float64, riskFreeRate float64, periodsPerYear int) *Metrics {
	clean := make([]float64, 0, len(returns))
	for _, r := range returns {
		if !math.IsNaN(r) {
			clean = append(clean, r)
		}
	}
	return &Metrics{
		returns:  clean,
		riskFree: riskFreeRate,
		periods:  float64(periodsPerYear),
	}
}

// Report computes every metric and returns the fixed-key map.
func (m *Metrics) Report() map[string]float64 {
	return map[string]float64{
		KeyTotalReturn:          m.TotalReturn(),
		KeyAnnualizedReturn:     m.AnnualizedReturn(),
		KeyAnnualizedVolatility: m.AnnualizedVolatility(),
		KeySharpeRatio:          m.SharpeRatio(),
		KeySortinoRatio:         m.SortinoRatio(),
		KeyMaxDrawdown:          m.MaxDrawdown(),
		KeyCalmarRatio:          m.CalmarRatio(),
		KeyWinRate:              m.WinRate(),
		KeyProfitFactor:         m.ProfitFactor(),
		KeySkewness:             m.Skewness(),
		KeyKurtosis:             m.Kurtosis(),
	}
}

// TotalReturn is the cumulative return over the whole period: Π(1+r) − 1.
func (m *Metrics) TotalReturn() float64 {
	prod := 1.0
	for _, r := range m.returns {
		prod *= 1 + r
	}
	return prod - 1
}

// AnnualizedReturn compounds the mean per-period return over a year.
func (m *Metrics) AnnualizedReturn() float64 {
	return math.Pow(1+mean(m.returns), m.periods) - 1
}

// AnnualizedVolatility scales the per-period standard deviation by √periods.
func (m *Metrics) AnnualizedVolatility() float64 {
	return sampleStd(m.returns) * math.Sqrt(m.periods)
}

// SharpeRatio is the annualized mean/std of excess returns.
func (m *Metrics) SharpeRatio() float64 {
	excess := m.excessReturns()
	return mean(excess) / sampleStd(excess) * math.Sqrt(m.periods)
}

// SortinoRatio replaces total volatility with downside deviation. It is
// NaN when there are no negative returns (no downside to measure).
func (m *Metrics) SortinoRatio() float64 {
	var downside []float64
	for _, r := range m.returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return math.NaN()
	}
	return mean(m.excessReturns()) / sampleStd(downside) * math.Sqrt(m.periods)
}

// MaxDrawdown is the deepest peak-to-trough decline of the cumulative
// return curve, as a non-positive fraction. Exactly 0 for a curve that
// never falls below a previous peak.
func (m *Metrics) MaxDrawdown() float64 {
	if len(m.returns) == 0 {
		return math.NaN()
	}
	cumulative := 1.0
	peak := math.Inf(-1)
	worst := math.Inf(1)
	for _, r := range m.returns {
		cumulative *= 1 + r
		if cumulative > peak {
			peak = cumulative
		}
		dd := cumulative/peak - 1
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// CalmarRatio is annualized return over |max drawdown|; NaN when the
// drawdown is exactly zero.
func (m *Metrics) CalmarRatio() float64 {
	maxDD := math.Abs(m.MaxDrawdown())
	if maxDD == 0 {
		return math.NaN()
	}
	return m.AnnualizedReturn() / maxDD
}

// WinRate is the fraction of periods with a positive return.
func (m *Metrics) WinRate() float64 {
	wins := 0
	for _, r := range m.returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(m.returns))
}

// ProfitFactor is gross profit over gross loss; +Inf when there are no
// losing periods.
func (m *Metrics) ProfitFactor() float64 {
	profits, losses := 0.0, 0.0
	for _, r := range m.returns {
		if r > 0 {
			profits += r
		} else if r < 0 {
			losses -= r
		}
	}
	if losses == 0 {
		return math.Inf(1)
	}
	return profits / losses
}

// Skewness is the bias-adjusted sample skewness; NaN for fewer than 3
// observations.
func (m *Metrics) Skewness() float64 {
	n := float64(len(m.returns))
	if n < 3 {
		return math.NaN()
	}
	mu := mean(m.returns)
	s := sampleStd(m.returns)
	sum := 0.0
	for _, r := range m.returns {
		z := (r - mu) / s
		sum += z * z * z
	}
	return n / ((n - 1) * (n - 2)) * sum
}

// Kurtosis is the bias-adjusted excess kurtosis; NaN for fewer than 4
// observations.
func (m *Metrics) Kurtosis() float64 {
	n := float64(len(m.returns))
	if n < 4 {
		return math.NaN()
	}
	mu := mean(m.returns)
	s := sampleStd(m.returns)
	sum := 0.0
	for _, r := range m.returns {
		z := (r - mu) / s
		sum += z * z * z * z
	}
	adj := n * (n + 1) / ((n - 1) * (n - 2) * (n - 3))
	return adj*sum - 3*(n-1)*(n-1)/((n-2)*(n-3))
}

func (m *Metrics) excessReturns() []float64 {
	perPeriod := m.riskFree / m.periods
	out := make([]float64, len(m.returns))
	for i, r := range m.returns {
		out[i] = r - perPeriod
	}
	return out
}

// mean of an empty slice is NaN (0/0), matching the NaN-propagation policy.
func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// sampleStd computes the ddof=1 standard deviation; NaN for fewer than 2
// observations.
func sampleStd(x []float64) float64 {
	n := float64(len(x))
	if n < 2 {
		return math.NaN()
	}
	mu := mean(x)
	sumSq := 0.0
	for _, v := range x {
		d := v - mu
		sumSq += d * d
	}
	return math.Sqrt(sumSq / (n - 1))
}
