// Package metrics implements the Metrics contract on top of the Prometheus
// client library. Metric names are prefixed with the component name so each
// worker exposes its own series.
package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements types.Metrics.
type PrometheusMetrics struct {
	mu          sync.RWMutex
	serviceName string

	processedTotal  *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec
	durationSeconds *prometheus.HistogramVec
	documentBytes   *prometheus.HistogramVec
	inProgress      *prometheus.GaugeVec
}

// New creates a PrometheusMetrics and registers its collectors with the
// default registry. It panics on duplicate registration, so create at most
// one instance per component name (the provider guarantees this).
func New(serviceName string) *PrometheusMetrics {
	m := &PrometheusMetrics{
		serviceName: serviceName,
	}

	m.processedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_processed_total", serviceName),
			Help: fmt.Sprintf("Total processed items by %s", serviceName),
		},
		[]string{"status", "type"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fmt.Sprintf("%s_errors_total", serviceName),
			Help: fmt.Sprintf("Total errors in %s", serviceName),
		},
		[]string{"error_type", "operation"},
	)

	m.durationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_duration_seconds", serviceName),
			Help:    fmt.Sprintf("Operation duration in %s", serviceName),
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// Audit documents are small JSON files; buckets top out at 1MB.
	m.documentBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    fmt.Sprintf("%s_document_bytes", serviceName),
			Help:    fmt.Sprintf("Audit document sizes handled by %s", serviceName),
			Buckets: []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576},
		},
		[]string{"doc_type"},
	)

	m.inProgress = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: fmt.Sprintf("%s_in_progress", serviceName),
			Help: fmt.Sprintf("Operations in progress in %s", serviceName),
		},
		[]string{"operation"},
	)

	prometheus.MustRegister(
		m.processedTotal,
		m.errorsTotal,
		m.durationSeconds,
		m.documentBytes,
		m.inProgress,
	)

	return m
}

// RecordSuccess increments the processed counter with status="success".
func (m *PrometheusMetrics) RecordSuccess(operationType string) {
	m.processedTotal.WithLabelValues("success", operationType).Inc()
}

// RecordError increments both the processed counter (status="error") and the
// detailed error counter.
func (m *PrometheusMetrics) RecordError(operationType string, errorType string) {
	m.processedTotal.WithLabelValues("error", operationType).Inc()
	m.errorsTotal.WithLabelValues(errorType, operationType).Inc()
}

// RecordDuration records an operation duration in seconds.
func (m *PrometheusMetrics) RecordDuration(operation string, duration float64) {
	m.durationSeconds.WithLabelValues(operation).Observe(duration)
}

// RecordDocumentSize records the size of a stored or loaded audit document.
func (m *PrometheusMetrics) RecordDocumentSize(docType string, bytes int64) {
	m.documentBytes.WithLabelValues(docType).Observe(float64(bytes))
}

// StartOperation increments the in-progress gauge for an operation.
func (m *PrometheusMetrics) StartOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Inc()
}

// EndOperation decrements the in-progress gauge for an operation.
func (m *PrometheusMetrics) EndOperation(operation string) {
	m.inProgress.WithLabelValues(operation).Dec()
}
