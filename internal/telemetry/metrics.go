package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the indicator service. All collectors are
// auto-registered on the default registry and exposed via promhttp on the
// health port.
var (
	BarsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "indicator_bars_processed_total",
			Help: "Total number of bars fed into the indicator engine",
		},
	)

	BarsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_bars_rejected_total",
			Help: "Total number of bars rejected before computation",
		},
		[]string{"reason"},
	)

	ComputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "indicator_compute_duration_seconds",
			Help:    "Time spent updating all calculators for one bar",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		},
	)

	SnapshotsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "indicator_snapshots_published_total",
			Help: "Total number of indicator snapshots published to Redis",
		},
	)

	PublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "indicator_publish_errors_total",
			Help: "Total number of failed snapshot publishes",
		},
	)

	ConsumerErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "indicator_consumer_errors_total",
			Help: "Total number of bar consumer errors",
		},
		[]string{"stage"},
	)

	TrackedSymbols = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "indicator_tracked_symbols",
			Help: "Number of symbols with live indicator state",
		},
	)
)
