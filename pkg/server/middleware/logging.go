package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-topology/pkg/logging"
)

// Logging logs every request with its status and latency.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r)

			fields := []logging.Field{
				logging.Endpoint(r.Method, r.URL.Path),
				logging.Status(sw.statusCode),
				logging.Latency(time.Since(start)),
			}
			if id := GetRequestID(r); id != "" {
				fields = append(fields, logging.RequestID(id))
			}

			if sw.statusCode >= http.StatusInternalServerError {
				logger.Warn("request failed", fields...)
				return
			}
			logger.Debug("request", fields...)
		})
	}
}
