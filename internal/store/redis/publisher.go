// Package redis publishes per-ticker analysis results to Redis for
// downstream dashboards. Publishing is best-effort behind a circuit
// breaker: a dead Redis never fails the pipeline.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"quantanalysis/internal/telemetry"
)

const (
	resultsHash = "qa:results"
	signalsHash = "qa:signals"
	pingTimeout = 5 * time.Second
)

// Config configures the publisher connection.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Publisher writes analysis results into Redis hashes keyed by ticker.
type Publisher struct {
	client  *goredis.Client
	breaker *CircuitBreaker
	log     *slog.Logger
	metrics *telemetry.Metrics
}

// NewPublisher connects and pings the server. metrics may be nil.
func NewPublisher(cfg Config, log *slog.Logger, metrics *telemetry.Metrics) (*Publisher, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	p := &Publisher{
		client:  client,
		breaker: NewCircuitBreaker(5, 10*time.Second),
		log:     log,
		metrics: metrics,
	}
	p.breaker.OnStateChange = func(from, to State) {
		log.Warn("redis circuit breaker transition", "from", from.String(), "to", to.String())
		if metrics != nil {
			metrics.BreakerState.Set(float64(to))
			if to == StateOpen {
				metrics.BreakerTrips.Inc()
			}
		}
	}

	log.Info("redis publisher connected", "addr", cfg.Addr)
	return p, nil
}

// PublishResults writes one ticker's metrics JSON and latest signal.
// Returns the breaker or write error so callers can log it, but the
// caller is expected to treat failures as non-fatal.
func (p *Publisher) PublishResults(ctx context.Context, ticker string, metrics map[string]float64, latestSignal string) error {
	payload, err := json.Marshal(jsonSafe(metrics))
	if err != nil {
		return fmt.Errorf("marshal results for %s: %w", ticker, err)
	}

	return p.breaker.Execute(func() error {
		start := time.Now()
		pipe := p.client.Pipeline()
		pipe.HSet(ctx, resultsHash, ticker, payload)
		pipe.HSet(ctx, signalsHash, ticker, latestSignal)
		_, err := pipe.Exec(ctx)
		if err != nil {
			return fmt.Errorf("redis publish %s: %w", ticker, err)
		}
		if p.metrics != nil {
			p.metrics.RedisPublishDur.Observe(time.Since(start).Seconds())
		}
		return nil
	})
}

// jsonSafe replaces NaN and infinities with null; encoding/json rejects
// them and several metrics legitimately produce them.
func jsonSafe(m map[string]float64) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}

// Client exposes the underlying client for health checks.
func (p *Publisher) Client() *goredis.Client { return p.client }

func (p *Publisher) Close() error {
	return p.client.Close()
}
