package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BacktestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtests_total",
			Help: "Total number of backtest runs by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	BacktestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backtest_duration_seconds",
			Help:    "Backtest run duration",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
		[]string{"strategy"},
	)

	TradesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backtest_trades_total",
			Help: "Total number of simulated trades",
		},
		[]string{"strategy", "kind"},
	)

	TrainingStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "training_streams_active",
			Help: "Training progress streams currently open",
		},
	)
)
