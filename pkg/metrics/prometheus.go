package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	tickerOutcomes *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	runDuration    prometheus.Histogram
	lastRunTickers *prometheus.GaugeVec
}

// New creates a new Prometheus metrics recorder on the default registry.
func New() *Recorder {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates a recorder bound to reg.
func NewWithRegisterer(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		tickerOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketbluff_ticker_outcomes_total",
				Help: "Per-ticker analysis outcomes",
			},
			[]string{"outcome"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketbluff_cache_lookups_total",
				Help: "Cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),
		errorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketbluff_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marketbluff_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		runDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "marketbluff_run_duration_seconds",
				Help:    "Duration of full analysis runs",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		lastRunTickers: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "marketbluff_last_run_tickers",
				Help: "Ticker counts of the most recent run",
			},
			[]string{"kind"},
		),
	}
}

// RecordTickerOutcome counts one ticker result (analyzed, excluded, failed).
func (r *Recorder) RecordTickerOutcome(outcome string) {
	r.tickerOutcomes.WithLabelValues(outcome).Inc()
}

// RecordCacheLookup counts a cache hit or miss.
func (r *Recorder) RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(cache, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordRun records a completed run.
func (r *Recorder) RecordRun(seconds float64, evaluated, failed int) {
	r.runDuration.Observe(seconds)
	r.lastRunTickers.WithLabelValues("evaluated").Set(float64(evaluated))
	r.lastRunTickers.WithLabelValues("failed").Set(float64(failed))
}
