package review

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "vocab_review"

// Metrics holds the Prometheus collectors of the review workflow.
type Metrics struct {
	// SessionsStarted counts started sessions.
	// Labels: session_type, mode (due, practice)
	SessionsStarted *prometheus.CounterVec

	// SessionsCompleted counts sessions moved to completed. Repeated ends of
	// the same session are not counted.
	SessionsCompleted prometheus.Counter

	// ResultsSubmitted counts recorded answers.
	// Labels: result (correct, incorrect)
	ResultsSubmitted *prometheus.CounterVec

	// ProgressRowsCreated counts default progress rows inserted while
	// resolving due sets.
	ProgressRowsCreated prometheus.Counter

	// DueResolution measures due set resolution, enrichment included.
	DueResolution prometheus.Histogram

	// EnrichmentFailures counts degraded enrichment lookups.
	// Labels: kind (examples, synonyms, generated_examples, store_examples)
	EnrichmentFailures *prometheus.CounterVec
}

// NewMetrics creates the review collectors and registers them with reg.
// A nil reg creates unregistered collectors, which is what tests use.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SessionsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sessions",
			Name:      "started_total",
			Help:      "Total review sessions started",
		}, []string{"session_type", "mode"}),

		SessionsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "sessions",
			Name:      "completed_total",
			Help:      "Total review sessions completed",
		}),

		ResultsSubmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "results",
			Name:      "submitted_total",
			Help:      "Total word results submitted by outcome",
		}, []string{"result"}),

		ProgressRowsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "progress",
			Name:      "rows_created_total",
			Help:      "Total default word progress rows created on first encounter",
		}),

		DueResolution: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "due",
			Name:      "resolution_seconds",
			Help:      "Due set resolution latency in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		EnrichmentFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "enrichment",
			Name:      "failures_total",
			Help:      "Total enrichment lookups that degraded to empty data",
		}, []string{"kind"}),
	}
}
