// Package pipeline orchestrates the per-ticker analysis: load, clean,
// indicators, signals, backtest, reports. One ticker's failure is logged
// and isolated; the remaining tickers still run.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"quantanalysis/config"
	"quantanalysis/internal/backtest"
	"quantanalysis/internal/data"
	"quantanalysis/internal/indicator"
	"quantanalysis/internal/logger"
	"quantanalysis/internal/model"
	"quantanalysis/internal/report"
	"quantanalysis/internal/signal"
	"quantanalysis/internal/stats"
	"quantanalysis/internal/store/sqlite"
	"quantanalysis/internal/telemetry"
)

// DataSource provides raw price history for one ticker. The pipeline
// cleans and validates whatever it returns.
type DataSource interface {
	Fetch(ticker string) (model.PriceSeries, error)
}

// CSVSource adapts the csv loader to the DataSource interface.
type CSVSource struct {
	Loader *data.Loader
}

func (s CSVSource) Fetch(ticker string) (model.PriceSeries, error) {
	return s.Loader.Load(ticker)
}

// ResultsPublisher pushes one ticker's final metrics to an external sink.
type ResultsPublisher interface {
	PublishResults(ctx context.Context, ticker string, metrics map[string]float64, latestSignal string) error
}

// TickerResult is the full output for one ticker.
type TickerResult struct {
	Ticker   string
	Data     *indicator.Table
	Signals  *signal.Result
	Metrics  map[string]float64 // buy-and-hold metrics of the raw closes
	Backtest *backtest.Result
}

// Pipeline runs the analysis stages for a set of tickers. Cache, reports,
// metrics and publisher are all optional; a nil field disables the stage.
type Pipeline struct {
	cfg       *config.Config
	source    DataSource
	log       *slog.Logger
	metrics   *telemetry.Metrics
	cache     *sqlite.Store
	publisher ResultsPublisher
	reports   *report.Writer
}

// Option configures optional pipeline stages.
type Option func(*Pipeline)

func WithCache(s *sqlite.Store) Option          { return func(p *Pipeline) { p.cache = s } }
func WithPublisher(pub ResultsPublisher) Option { return func(p *Pipeline) { p.publisher = pub } }
func WithReports(w *report.Writer) Option       { return func(p *Pipeline) { p.reports = w } }
func WithTelemetry(m *telemetry.Metrics) Option { return func(p *Pipeline) { p.metrics = m } }

// New creates a pipeline. log must not be nil.
func New(cfg *config.Config, source DataSource, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg, source: source, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes each ticker in order. The returned map holds an entry per
// ticker that completed; failed tickers are logged, counted, and skipped.
// Only a configuration error aborts the whole run.
func (p *Pipeline) Run(ctx context.Context, tickers []string) (map[string]*TickerResult, error) {
	sigCfg, err := p.cfg.SignalConfig()
	if err != nil {
		return nil, err
	}

	results := make(map[string]*TickerResult, len(tickers))
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			return results, ctx.Err()
		}
		res, err := p.runOne(ctx, ticker, sigCfg)
		if err != nil {
			p.log.Error("ticker failed", "ticker", ticker, "err", err)
			if p.metrics != nil {
				p.metrics.TickersFailed.Inc()
			}
			continue
		}
		results[ticker] = res
		if p.metrics != nil {
			p.metrics.TickersProcessed.Inc()
		}
	}
	return results, nil
}

func (p *Pipeline) runOne(ctx context.Context, ticker string, sigCfg *signal.Config) (*TickerResult, error) {
	log := logger.WithTicker(p.log, ticker)

	start := time.Now()
	raw, err := p.source.Fetch(ticker)
	if err != nil {
		return nil, err
	}
	series, err := data.Clean(raw)
	if err != nil {
		return nil, err
	}
	p.observe("load", start)
	log.Info("data loaded", "bars", len(series))

	if p.cache != nil {
		if err := p.cache.SaveBars(ticker, series); err != nil {
			// Cache trouble degrades replay, not the analysis.
			log.Warn("bar cache write failed", "err", err)
		} else if p.metrics != nil {
			p.metrics.CacheWrites.Inc()
		}
	}

	start = time.Now()
	table, err := indicator.NewEngine().Compute(series, sigCfg.IndicatorSpec())
	if err != nil {
		return nil, err
	}
	p.observe("indicators", start)

	start = time.Now()
	sigs, err := signal.NewGenerator(sigCfg).Generate(table)
	if err != nil {
		return nil, err
	}
	p.observe("signals", start)
	p.countSignals(sigs.Signals)

	start = time.Now()
	bt, err := backtest.New(
		series.Dates(),
		series.Closes(),
		sigs.Signals.Simplify(),
		backtest.Config{
			InitialCapital: p.cfg.Backtesting.InitialCapital,
			Commission:     p.cfg.Backtesting.Commission,
			RiskFreeRate:   p.cfg.Backtesting.RiskFreeRate,
		},
	).Run()
	if err != nil {
		return nil, err
	}
	p.observe("backtest", start)
	if p.metrics != nil {
		p.metrics.TradesClosed.Add(float64(len(bt.Trades)))
	}
	log.Info("backtest complete",
		"trades", len(bt.Trades),
		"open_position", bt.OpenPosition,
		"total_return", bt.Metrics[stats.KeyTotalReturn])

	res := &TickerResult{
		Ticker:   ticker,
		Data:     table,
		Signals:  sigs,
		Metrics:  buyAndHold(series, p.cfg.Backtesting.RiskFreeRate),
		Backtest: bt,
	}

	if p.reports != nil {
		start = time.Now()
		if err := p.writeReports(ticker, series, res); err != nil {
			return nil, err
		}
		p.observe("report", start)
	}

	if p.publisher != nil {
		latest := sigs.Signals.Values[sigs.Signals.Len()-1].String()
		if err := p.publisher.PublishResults(ctx, ticker, bt.Metrics, latest); err != nil {
			// Best effort: dashboards lag, the run still succeeds.
			log.Warn("results publish failed", "err", err)
		}
	}

	return res, nil
}

func (p *Pipeline) writeReports(ticker string, series model.PriceSeries, res *TickerResult) error {
	if err := p.reports.WriteMetrics(ticker, res.Backtest.Metrics); err != nil {
		return err
	}
	if err := p.reports.WriteSignals(ticker, res.Signals.Signals); err != nil {
		return err
	}
	if err := p.reports.WriteBacktest(ticker, res.Backtest); err != nil {
		return err
	}
	if p.cfg.Output.WriteTrades {
		if err := p.reports.WriteTrades(ticker, res.Backtest.Trades); err != nil {
			return err
		}
	}
	return p.reports.WriteSummary(ticker,
		series[0].Date, series[len(series)-1].Date, len(series),
		res.Backtest.Metrics, len(res.Backtest.Trades))
}

func (p *Pipeline) observe(stage string, start time.Time) {
	if p.metrics != nil {
		p.metrics.ObserveStage(stage, start)
	}
}

func (p *Pipeline) countSignals(s signal.Series) {
	if p.metrics == nil {
		return
	}
	for _, v := range s.Values {
		p.metrics.SignalsTotal.WithLabelValues(v.String()).Inc()
	}
}

// buyAndHold computes the benchmark metrics over the raw close-to-close
// returns of the series.
func buyAndHold(series model.PriceSeries, riskFree float64) map[string]float64 {
	closes := series.Closes()
	if len(closes) < 2 {
		return stats.New(nil, riskFree).Report()
	}
	returns := make([]float64, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		returns[i-1] = closes[i]/closes[i-1] - 1
	}
	return stats.New(returns, riskFree).Report()
}
