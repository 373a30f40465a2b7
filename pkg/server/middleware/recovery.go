package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/dd0wney/cluso-topology/pkg/logging"
)

// PanicRecovery recovers from panics in handlers, logs the stack and
// answers 500 without exposing internals.
func PanicRecovery(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic in HTTP handler",
						logging.Endpoint(r.Method, r.URL.Path),
						logging.RequestID(GetRequestID(r)),
						logging.String("panic", fmt.Sprint(err)),
						logging.String("stack", string(debug.Stack())))

					http.Error(w, "Internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
