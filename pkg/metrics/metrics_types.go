package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics (diagnostics and fixture servers)
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Backend client Metrics
	ClientRequestsTotal   *prometheus.CounterVec
	ClientRequestDuration *prometheus.HistogramVec
	ClientBreakerState    prometheus.Gauge

	// View Metrics
	DatasetSyncsTotal         *prometheus.CounterVec
	DatasetNodes              prometheus.Gauge
	DatasetLinks              prometheus.Gauge
	DatasetDanglingLinks      prometheus.Gauge
	DescriptorEncodesTotal    *prometheus.CounterVec
	SettingsChangesTotal      *prometheus.CounterVec
	HighlightTransitionsTotal *prometheus.CounterVec
	CameraMovesTotal          *prometheus.CounterVec

	// Simulation Metrics
	SimulationReheatsTotal prometheus.Counter
	SimulationTicksTotal   prometheus.Counter
	SimulationAlpha        prometheus.Gauge

	// System Metrics
	UptimeSeconds    prometheus.Gauge
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initHTTPMetrics()
	r.initClientMetrics()
	r.initViewMetrics()
	r.initSimulationMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
