package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a Prometheus registry with the storage operation metrics and
// the HTTP server exposing it.
type Metrics struct {
	// Server serves the registry on Config.Address. FXModule starts and stops
	// it.
	Server *http.Server

	// Registry holds every metric of this instance; it is not the global
	// Prometheus registry.
	Registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	operationSize     *prometheus.HistogramVec
}

// NewMetrics creates the registry and registers the operation metrics:
//
//   - <namespace>_operations_total{component, operation, resource, status}
//   - <namespace>_operation_duration_seconds{component, operation}
//   - <namespace>_operation_size{component, operation}
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	var registerer prometheus.Registerer = registry
	if cfg.ServiceName != "" {
		registerer = prometheus.WrapRegistererWith(prometheus.Labels{"service": cfg.ServiceName}, registry)
	}

	m := &Metrics{Registry: registry}
	m.operationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Name:      "operations_total",
		Help:      "Total number of storage operations by outcome.",
	}, []string{"component", "operation", "resource", "status"})
	m.operationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "operation_duration_seconds",
		Help:      "Duration of storage operations in seconds.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"component", "operation"})
	m.operationSize = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Name:      "operation_size",
		Help:      "Records or bytes touched by storage operations.",
		Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"component", "operation"})

	registerer.MustRegister(m.operationsTotal, m.operationDuration, m.operationSize)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
