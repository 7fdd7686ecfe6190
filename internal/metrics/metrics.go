package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the directory query and write paths.
type Metrics struct {
	// Full ListProviders latency including the snapshot read
	QueryLatency prometheus.Histogram

	// Number of providers returned per query
	QueryResults prometheus.Histogram

	// Failed queries by kind: "validation", "storage"
	QueryErrors *prometheus.CounterVec

	// Provider writes by operation
	ProviderWrites *prometheus.CounterVec
}

// New creates a new Metrics instance registered with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueryLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "directory_query_duration_seconds",
			Help:    "Duration of directory list queries",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		QueryResults: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "directory_query_results",
			Help:    "Number of providers returned by directory list queries",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),

		QueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_query_errors_total",
			Help: "Total failed directory queries by kind",
		}, []string{"kind"}),

		ProviderWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "directory_provider_writes_total",
			Help: "Total provider write operations by operation",
		}, []string{"operation"}),
	}
}

// ObserveQuery records a successful query.
func (m *Metrics) ObserveQuery(d time.Duration, results int) {
	if m != nil {
		m.QueryLatency.Observe(d.Seconds())
		m.QueryResults.Observe(float64(results))
	}
}

// IncrementQueryError records a failed query.
func (m *Metrics) IncrementQueryError(kind string) {
	if m != nil {
		m.QueryErrors.WithLabelValues(kind).Inc()
	}
}

// IncrementProviderWrite records a provider write.
func (m *Metrics) IncrementProviderWrite(operation string) {
	if m != nil {
		m.ProviderWrites.WithLabelValues(operation).Inc()
	}
}
