package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topology_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initClientMetrics() {
	r.ClientRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "topology_client_requests_total",
			Help: "Backend API calls by endpoint and outcome",
		},
		[]string{"endpoint", "status"},
	)

	r.ClientRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "topology_client_request_duration_seconds",
			Help:    "Backend API call latency in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"endpoint"},
	)

	r.ClientBreakerState = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "topology_client_breaker_state",
			Help: "Backend circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)
}
