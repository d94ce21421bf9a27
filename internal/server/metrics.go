package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request metrics are recorded by the instrumented middleware, run and
// websocket metrics by their handlers. Per-step counters live with the
// validation engine observers.
var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocrval_http_requests_total",
		Help: "HTTP requests served, by method, endpoint and status text.",
	}, []string{"method", "endpoint", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ocrval_http_request_duration_seconds",
		Help:    "Latency of served HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	validationRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocrval_validation_runs_total",
		Help: "Triggered validation runs by outcome: completed, failed or rejected.",
	}, []string{"outcome"})

	validationRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocrval_validation_run_duration_seconds",
		Help:    "Wall time of completed validation runs.",
		Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	websocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ocrval_websocket_active_connections",
		Help: "Currently connected progress stream clients.",
	})

	websocketMessagesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocrval_websocket_messages_total",
		Help: "Progress stream messages by direction.",
	}, []string{"direction"})
)
