// Package telemetry holds the process-wide Prometheus collectors and the
// OpenTelemetry tracer used by the pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PredictionsTotal counts predictions by model kind and predicted label.
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskinsight",
			Name:      "predictions_total",
			Help:      "Total number of predictions by model and label",
		},
		[]string{"model", "label"},
	)

	// TrainingDuration tracks load, split and fit time per prediction.
	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "deskinsight",
			Name:      "training_duration_seconds",
			Help:      "Time spent training a model for one prediction",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	// AggregateQueriesTotal counts metric aggregator calls by query and status.
	AggregateQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskinsight",
			Name:      "aggregate_queries_total",
			Help:      "Total number of aggregate queries by query and status",
		},
		[]string{"query", "status"},
	)

	// ArtifactsWrittenTotal counts explainability images written per model kind.
	ArtifactsWrittenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskinsight",
			Name:      "artifacts_written_total",
			Help:      "Total number of explainability artifacts written",
		},
		[]string{"model"},
	)

	// ReportsGeneratedTotal counts report builds by trigger and status.
	ReportsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "deskinsight",
			Name:      "reports_generated_total",
			Help:      "Total number of client reports generated",
		},
		[]string{"trigger", "status"},
	)
)

// Status renders an error as a metric label value.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
