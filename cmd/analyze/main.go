// cmd/analyze runs the full analysis pipeline over CSV price history:
// indicators, signals, backtest, reports.
//
// Usage:
//
//	go run ./cmd/analyze --tickers=AAPL,MSFT --data-dir=data --config=config.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"quantanalysis/config"
	"quantanalysis/internal/data"
	"quantanalysis/internal/logger"
	"quantanalysis/internal/pipeline"
	"quantanalysis/internal/report"
	redisstore "quantanalysis/internal/store/redis"
	sqlitestore "quantanalysis/internal/store/sqlite"
	"quantanalysis/internal/stats"
	"quantanalysis/internal/telemetry"
)

func main() {
	tickersFlag := flag.String("tickers", "", "Comma-separated tickers to analyze (required)")
	configPath := flag.String("config", "", "Path to YAML config (default: built-in defaults)")
	dataDir := flag.String("data-dir", "data", "Directory holding <TICKER>.csv files")
	outputDir := flag.String("output", "", "Report output directory (overrides config)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log := logger.Init("analyze", logger.ParseLevel(*logLevel))

	tickers := splitTickers(*tickersFlag)
	if len(tickers) == 0 {
		log.Error("no tickers given, use --tickers=AAPL,MSFT")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Error("config load failed", "err", err)
			os.Exit(1)
		}
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}

	opts := []pipeline.Option{
		pipeline.WithReports(report.NewWriter(cfg.Output.Dir)),
	}

	var metrics *telemetry.Metrics
	health := telemetry.NewHealth()
	if cfg.Telemetry.Enabled {
		metrics = telemetry.NewMetrics()
		opts = append(opts, pipeline.WithTelemetry(metrics))

		srv := telemetry.NewServer(cfg.Telemetry.Addr, health, log)
		srv.Start()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Stop(ctx)
		}()
	}

	if cfg.Cache.Enabled {
		cache, err := sqlitestore.Open(cfg.Cache.Path, log)
		if err != nil {
			log.Error("bar cache open failed", "err", err)
			os.Exit(1)
		}
		defer cache.Close()
		opts = append(opts, pipeline.WithCache(cache))
	}

	if cfg.Redis.Enabled {
		pub, err := redisstore.NewPublisher(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log, metrics)
		if err != nil {
			// Publishing is optional; run without it.
			log.Warn("redis unavailable, results will not be published", "err", err)
		} else {
			defer pub.Close()
			opts = append(opts, pipeline.WithPublisher(pub))
			health.SetPublisherEnabled(true)
		}
	}

	source := pipeline.CSVSource{Loader: data.NewLoader(*dataDir)}
	p := pipeline.New(cfg, source, log, opts...)

	results, err := p.Run(context.Background(), tickers)
	if err != nil {
		log.Error("pipeline aborted", "err", err)
		os.Exit(1)
	}
	health.RecordRun(len(tickers), len(tickers)-len(results))

	printSummary(results)

	if len(results) < len(tickers) {
		log.Warn("some tickers failed", "requested", len(tickers), "completed", len(results))
		os.Exit(1)
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

func printSummary(results map[string]*pipeline.TickerResult) {
	tickers := make([]string, 0, len(results))
	for t := range results {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	fmt.Printf("%-8s %12s %12s %10s %8s\n", "ticker", "total_ret", "sharpe", "max_dd", "trades")
	for _, t := range tickers {
		m := results[t].Backtest.Metrics
		fmt.Printf("%-8s %12.4f %12.4f %10.4f %8d\n",
			t,
			m[stats.KeyTotalReturn],
			m[stats.KeySharpeRatio],
			m[stats.KeyMaxDrawdown],
			len(results[t].Backtest.Trades))
	}
}
