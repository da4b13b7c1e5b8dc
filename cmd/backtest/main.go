// cmd/backtest replays cached price bars from the local sqlite store
// through the signal and backtest core without re-parsing CSV files.
//
// Usage:
//
//	go run ./cmd/backtest --db=data/bars.db --tickers=AAPL --commission=0.001
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"quantanalysis/config"
	"quantanalysis/internal/backtest"
	"quantanalysis/internal/indicator"
	"quantanalysis/internal/logger"
	"quantanalysis/internal/signal"
	sqlitestore "quantanalysis/internal/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/bars.db", "Path to the sqlite bar cache")
	tickersFlag := flag.String("tickers", "", "Comma-separated tickers (default: every cached ticker)")
	configPath := flag.String("config", "", "Path to YAML config (default: built-in defaults)")
	commission := flag.Float64("commission", -1, "Commission rate override (-1: use config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log := logger.Init("backtest", logger.ParseLevel(*logLevel))

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("config load failed", "err", err)
			os.Exit(1)
		}
	}
	if *commission >= 0 {
		cfg.Backtesting.Commission = *commission
	}

	sigCfg, err := cfg.SignalConfig()
	if err != nil {
		log.Error("invalid signal configuration", "err", err)
		os.Exit(1)
	}

	store, err := sqlitestore.Open(*dbPath, log)
	if err != nil {
		log.Error("bar cache open failed", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	tickers := splitTickers(*tickersFlag)
	if len(tickers) == 0 {
		tickers, err = store.Tickers()
		if err != nil {
			log.Error("listing cached tickers failed", "err", err)
			os.Exit(1)
		}
		if len(tickers) == 0 {
			log.Error("bar cache is empty, run cmd/analyze with cache enabled first")
			os.Exit(1)
		}
	}

	failed := 0
	for _, ticker := range tickers {
		if err := replayTicker(store, ticker, sigCfg, cfg); err != nil {
			logger.WithTicker(log, ticker).Error("replay failed", "err", err)
			failed++
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func replayTicker(store *sqlitestore.Store, ticker string, sigCfg *signal.Config, cfg *config.Config) error {
	series, err := store.LoadBars(ticker)
	if err != nil {
		return err
	}
	if len(series) == 0 {
		return fmt.Errorf("no cached bars for %s", ticker)
	}

	table, err := indicator.NewEngine().Compute(series, sigCfg.IndicatorSpec())
	if err != nil {
		return err
	}
	sigs, err := signal.NewGenerator(sigCfg).Generate(table)
	if err != nil {
		return err
	}

	res, err := backtest.New(
		series.Dates(),
		series.Closes(),
		sigs.Signals.Simplify(),
		backtest.Config{
			InitialCapital: cfg.Backtesting.InitialCapital,
			Commission:     cfg.Backtesting.Commission,
			RiskFreeRate:   cfg.Backtesting.RiskFreeRate,
		},
	).Run()
	if err != nil {
		return err
	}

	printMetrics(ticker, len(series), res)
	return nil
}

func printMetrics(ticker string, bars int, res *backtest.Result) {
	fmt.Printf("\n%s  (%d bars, %d closed trades", ticker, bars, len(res.Trades))
	if res.OpenPosition {
		fmt.Print(", 1 open position")
	}
	fmt.Println(")")

	keys := make([]string, 0, len(res.Metrics))
	for k := range res.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-24s %12.6f\n", k, res.Metrics[k])
	}
}

func splitTickers(s string) []string {
	var tickers []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(strings.ToUpper(t))
		if t != "" {
			tickers = append(tickers, t)
		}
	}
	return tickers
}
