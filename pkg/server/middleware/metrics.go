package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// MetricsRecorder records HTTP request metrics.
type MetricsRecorder interface {
	RecordHTTPRequest(method, route, status string, duration time.Duration)
	IncHTTPRequestsInFlight()
	DecHTTPRequestsInFlight()
}

// statusWriter wraps http.ResponseWriter to capture the status code and
// bytes written.
type statusWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (w *statusWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// Metrics tracks request counts, latency and in-flight requests. Requests
// are labelled with the chi route pattern so ids in paths do not create a
// series each.
func Metrics(recorder MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if recorder == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()

			recorder.IncHTTPRequestsInFlight()
			defer recorder.DecHTTPRequestsInFlight()

			wrapper := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapper, r)

			recorder.RecordHTTPRequest(r.Method, routePattern(r), strconv.Itoa(wrapper.statusCode), time.Since(start))
		})
	}
}

// routePattern returns the matched chi pattern, or "unmatched".
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
