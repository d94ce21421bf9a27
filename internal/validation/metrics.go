package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nitya2202/ocr-string-validation-tool/internal/model"
)

var (
	validationRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocrval_validation_runs_total",
			Help: "Total number of validation runs started",
		},
	)

	validationStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocrval_validation_steps_total",
			Help: "Total number of validated steps by classification",
		},
		[]string{"result"},
	)

	validationStepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ocrval_validation_step_duration_seconds",
			Help:    "Per-step validation duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	validationErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ocrval_validation_errors_total",
			Help: "Total number of step and load errors",
		},
	)
)

// MetricsObserver publishes run progress to the Prometheus default registry.
type MetricsObserver struct {
	NoOpObserver
}

// NewMetricsObserver creates a Prometheus-backed observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

func (MetricsObserver) OnRunStart(total int) {
	validationRunsTotal.Inc()
}

func (MetricsObserver) OnStepComplete(result model.ValidationResult) {
	validationStepsTotal.WithLabelValues(string(result.Result)).Inc()
	if result.DurationMS != nil {
		validationStepDuration.Observe(*result.DurationMS / 1000.0)
	}
}

func (MetricsObserver) OnError(err error, step *model.TestStep) {
	validationErrorsTotal.Inc()
}
