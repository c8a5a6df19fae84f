package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gapscout"

// Outcome labels for strategy attempts.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// Metrics holds the Prometheus collectors for analysis runs. Each instance owns its registry.
type Metrics struct {
	registry *prometheus.Registry

	strategyAttempts *prometheus.CounterVec
	strategyDuration *prometheus.HistogramVec
	gapsReturned     *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	analyses         *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry. Go and process collectors are included.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: namespace}),
	)

	m := &Metrics{
		registry: registry,
		strategyAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "strategy_attempts_total",
			Help:      "Gap strategy attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		strategyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "strategy_duration_seconds",
			Help:      "Time spent in each gap strategy",
			Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"strategy"}),
		gapsReturned: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gaps_returned",
			Help:      "Number of gaps returned by a successful strategy",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"strategy"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by backend and result",
		}, []string{"backend", "result"}),
		analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis runs by final status",
		}, []string{"status"}),
	}

	registry.MustRegister(m.strategyAttempts, m.strategyDuration, m.gapsReturned, m.cacheLookups, m.analyses)
	return m
}

// ObserveAttempt records one strategy attempt.
func (m *Metrics) ObserveAttempt(strategy, outcome string, elapsed time.Duration, gaps int) {
	if m == nil {
		return
	}
	m.strategyAttempts.WithLabelValues(strategy, outcome).Inc()
	m.strategyDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.gapsReturned.WithLabelValues(strategy).Observe(float64(gaps))
	}
}

// ObserveCacheLookup records a cache hit or miss.
func (m *Metrics) ObserveCacheLookup(backend string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(backend, result).Inc()
}

// ObserveAnalysis records the final status of an analysis run (ok, invalid, exhausted, error).
func (m *Metrics) ObserveAnalysis(status string) {
	if m == nil {
		return
	}
	m.analyses.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
