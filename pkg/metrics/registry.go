// Package metrics owns the process-wide Prometheus registry and the
// nil-safe indirection the rest of the collector depends on: every
// component accepts a metrics interface that is safe to use when nil, so
// the collector runs with metrics disabled by simply not calling
// InitRegistry.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	mu       sync.RWMutex
	registry *prometheus.Registry
	enabled  bool
)

// InitRegistry creates the process-wide registry and registers the
// standard Go/process collectors; namespace is not applied to them. Call once at startup
// before constructing any Prometheus-backed metrics implementation.
func InitRegistry(namespace string) *prometheus.Registry {
	mu.Lock()
	defer mu.Unlock()

	registry = prometheus.NewRegistry()
	registry.MustRegister(
		prometheusCollectorsGoRuntime()...,
	)
	enabled = true
	_ = namespace // namespace is applied per-metric by callers, not globally
	return registry
}

// IsEnabled reports whether InitRegistry has been called.
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// GetRegistry returns the process-wide registry. Callers must check
// IsEnabled first; GetRegistry panics if called before InitRegistry.
func GetRegistry() *prometheus.Registry {
	mu.RLock()
	defer mu.RUnlock()
	if registry == nil {
		panic("metrics: GetRegistry called before InitRegistry")
	}
	return registry
}

// prometheusCollectorsGoRuntime returns the standard collectors every
// Prometheus-instrumented Go process exposes.
func prometheusCollectorsGoRuntime() []prometheus.Collector {
	return []prometheus.Collector{
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	}
}
