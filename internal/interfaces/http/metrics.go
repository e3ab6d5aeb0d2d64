package http

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRegistry holds the Prometheus metrics exposed by the scanner.
type MetricsRegistry struct {
	// Evaluation pipeline
	EvalDuration   *prometheus.HistogramVec
	SymbolsScored  prometheus.Counter
	ProviderErrors *prometheus.CounterVec

	// Buffer health
	BufferSize     prometheus.Gauge
	EvictedSignals prometheus.Counter

	// Serving cadence
	PublishFailures prometheus.Counter
	SnapshotSize    prometheus.Gauge
}

// NewMetricsRegistry creates and registers the scanner metrics on reg.
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	m := &MetricsRegistry{
		EvalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oppscan_eval_duration_seconds",
				Help:    "Duration of per-symbol evaluations in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"result"},
		),
		SymbolsScored: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "oppscan_symbols_scored_total",
				Help: "Total number of symbol evaluations completed",
			},
		),
		ProviderErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oppscan_provider_errors_total",
				Help: "Provider fetch failures by provider and reason",
			},
			[]string{"provider", "reason"},
		),
		BufferSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "oppscan_buffer_signals",
				Help: "Signals currently held in the buffer",
			},
		),
		EvictedSignals: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "oppscan_buffer_evicted_total",
				Help: "Signals evicted after aging out of the window",
			},
		),
		PublishFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "oppscan_publish_failures_total",
				Help: "Snapshot publish attempts that failed",
			},
		),
		SnapshotSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "oppscan_snapshot_symbols",
				Help: "Unique symbols in the last published snapshot",
			},
		),
	}

	reg.MustRegister(
		m.EvalDuration,
		m.SymbolsScored,
		m.ProviderErrors,
		m.BufferSize,
		m.EvictedSignals,
		m.PublishFailures,
		m.SnapshotSize,
	)
	return m
}
