package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cell_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// service.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	MessagesProduced prometheus.Counter
	TransformErrors  *prometheus.CounterVec // labels: code={UNAVAILABLE,UNSUPPORTED_TECHNOLOGY,INVALID_ARGUMENT,INTERNAL}
	PipelineRunning  prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// getCellInfo bridge metrics.
	CellInfoRequests *prometheus.CounterVec // labels: outcome={OK,<error code>}

	// Cell location metrics.
	LocateRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	LocateCache       *prometheus.CounterVec // labels: result={hit,miss}
	LocateAPIDuration prometheus.Histogram
	LocateEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the source topic.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_produced_total",
			Help:      "Total messages written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total normalization failures by error code.",
		}, []string{"code"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		CellInfoRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cellinfo_requests_total",
			Help:      "getCellInfo calls by outcome.",
		}, []string{"outcome"}),
		LocateRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_requests_total",
			Help:      "OpenCelliD lookups by outcome.",
		}, []string{"outcome"}),
		LocateCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locate_cache_total",
			Help:      "Cell location cache lookups by result.",
		}, []string{"result"}),
		LocateAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "locate_api_duration_seconds",
			Help:      "OpenCelliD API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		LocateEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locate_enabled",
			Help:      "1 when cell location enrichment is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.MessagesConsumed,
		m.MessagesProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.CellInfoRequests,
		m.LocateRequests,
		m.LocateCache,
		m.LocateAPIDuration,
		m.LocateEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		MessagesConsumed:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_consumed_total"}),
		MessagesProduced:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "messages_produced_total"}),
		TransformErrors:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "transform_errors_total"}, []string{"code"}),
		PipelineRunning:         prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pipeline_running"}),
		BatchSize:               prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_size"}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "batch_processing_duration_seconds"}),
		CellInfoRequests:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "cellinfo_requests_total"}, []string{"outcome"}),
		LocateRequests:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "locate_requests_total"}, []string{"outcome"}),
		LocateCache:             prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "locate_cache_total"}, []string{"result"}),
		LocateAPIDuration:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "locate_api_duration_seconds"}),
		LocateEnabled:           prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "locate_enabled"}),
	}
}
