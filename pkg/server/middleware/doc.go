// Package middleware provides HTTP middleware for the diagnostics server and
// the fixture backend.
//
//   - recovery.go: panic recovery
//   - logging.go: structured request logging
//   - request_id.go: X-Request-ID propagation
//   - metrics.go: request counts and latency by route pattern
//   - body_limit.go: request body size limit
//   - cors.go: CORS for browser clients of the fixture backend
//
// All middleware follows the standard pattern func(http.Handler) http.Handler
// and can be passed to chi's Router.Use:
//
//	r := chi.NewRouter()
//	r.Use(middleware.PanicRecovery(logger))
//	r.Use(middleware.RequestID())
//	r.Use(middleware.Logging(logger))
//	r.Use(middleware.Metrics(registry))
package middleware
