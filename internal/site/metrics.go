package site

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK     = "ok"
	resultFailed = "failed"
)

// Metrics counts build activity on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	documents *prometheus.CounterVec
	blocks    prometheus.Counter
	duration  prometheus.Histogram
}

// NewMetrics registers the build counters on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "codeextra_documents_total",
			Help: "Documents rendered, by result.",
		}, []string{"result"}),
		blocks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codeextra_code_blocks_total",
			Help: "Fenced code blocks enriched.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "codeextra_build_duration_seconds",
			Help:    "Wall time of a full build.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	m.registry.MustRegister(m.documents, m.blocks, m.duration)

	return m
}

// Registry returns the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteFile writes the current values in Prometheus text format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
