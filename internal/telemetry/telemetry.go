// Package telemetry exposes Prometheus metrics for the analysis pipeline
// and a small HTTP server for /metrics and /healthz.
package telemetry

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline's Prometheus instruments.
type Metrics struct {
	TickersProcessed prometheus.Counter
	TickersFailed    prometheus.Counter
	TradesClosed     prometheus.Counter
	SignalsTotal     *prometheus.CounterVec // labels: signal
	StageDur         *prometheus.HistogramVec
	CacheWrites      prometheus.Counter
	RedisPublishDur  prometheus.Histogram
	BreakerState     prometheus.Gauge // 0=closed, 1=open, 2=half-open
	BreakerTrips     prometheus.Counter
}

// NewMetrics registers all metrics with the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers against an explicit registerer, which tests use
// to avoid duplicate registration across cases.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TickersProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantanalysis_tickers_processed_total",
			Help: "Tickers that completed the full pipeline",
		}),
		TickersFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantanalysis_tickers_failed_total",
			Help: "Tickers that failed at any pipeline stage",
		}),
		TradesClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantanalysis_trades_closed_total",
			Help: "Closed trades across all backtests",
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quantanalysis_signals_total",
			Help: "Signals generated, by signal value",
		}, []string{"signal"}),
		StageDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quantanalysis_stage_duration_seconds",
			Help:    "Per-ticker pipeline stage latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage"}),
		CacheWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantanalysis_cache_writes_total",
			Help: "Bar batches persisted to the sqlite cache",
		}),
		RedisPublishDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quantanalysis_redis_publish_duration_seconds",
			Help:    "Redis results publish latency",
			Buckets: prometheus.DefBuckets,
		}),
		BreakerState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quantanalysis_redis_circuit_breaker_state",
			Help: "Redis circuit breaker state (0=closed, 1=open, 2=half-open)",
		}),
		BreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quantanalysis_redis_circuit_breaker_trips_total",
			Help: "Times the Redis circuit breaker tripped open",
		}),
	}

	reg.MustRegister(
		m.TickersProcessed,
		m.TickersFailed,
		m.TradesClosed,
		m.SignalsTotal,
		m.StageDur,
		m.CacheWrites,
		m.RedisPublishDur,
		m.BreakerState,
		m.BreakerTrips,
	)
	return m
}

// ObserveStage times one pipeline stage.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDur.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// healthStatus is the /healthz response body.
type healthStatus struct {
	StartedAt        time.Time `json:"started_at"`
	LastRunAt        time.Time `json:"last_run_at"`
	LastRunTickers   int       `json:"last_run_tickers"`
	LastRunFailures  int       `json:"last_run_failures"`
	CacheOK          bool      `json:"cache_ok"`
	PublisherEnabled bool      `json:"publisher_enabled"`
}

// Health tracks the last pipeline run for the /healthz endpoint.
type Health struct {
	mu     sync.RWMutex
	status healthStatus
}

func NewHealth() *Health {
	return &Health{status: healthStatus{StartedAt: time.Now(), CacheOK: true}}
}

// RecordRun notes the outcome of one pipeline run.
func (h *Health) RecordRun(tickers, failures int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.LastRunAt = time.Now()
	h.status.LastRunTickers = tickers
	h.status.LastRunFailures = failures
}

func (h *Health) SetCacheOK(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.CacheOK = v
}

func (h *Health) SetPublisherEnabled(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status.PublisherEnabled = v
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	snapshot := h.status
	h.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !snapshot.CacheOK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(&snapshot)
}

// Server runs an HTTP server exposing /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
	log  *slog.Logger
}

// NewServer creates the metrics and health server.
func NewServer(addr string, health *Health, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", health)

	return &Server{
		addr: addr,
		log:  log,
		srv:  &http.Server{Addr: addr, Handler: mux},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		s.log.Info("telemetry server listening", "addr", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			s.log.Error("telemetry server error", "err", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) {
	s.srv.Shutdown(ctx)
}
