package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-topology/pkg/health"
	"github.com/dd0wney/cluso-topology/pkg/logging"
	"github.com/dd0wney/cluso-topology/pkg/metrics"
	"github.com/dd0wney/cluso-topology/pkg/server/middleware"
)

// DiagnosticsHandler serves health and Prometheus endpoints:
//
//	GET /healthz  all checks
//	GET /readyz   readiness checks (backend)
//	GET /livez    liveness checks (simulation, memory)
//	GET /metrics  Prometheus exposition of reg
func DiagnosticsHandler(hc *health.HealthChecker, reg *metrics.Registry, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := chi.NewRouter()
	r.Use(middleware.PanicRecovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics(reg))

	r.Get("/healthz", hc.HTTPHandler())
	r.Get("/readyz", hc.ReadinessHandler())
	r.Get("/livez", hc.LivenessHandler())
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg.GetPrometheusRegistry(), promhttp.HandlerOpts{}))
	}
	return r
}
