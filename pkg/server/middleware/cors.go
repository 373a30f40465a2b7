package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string // Exact origins, or "*" for any
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         int // Preflight cache duration in seconds
}

// DefaultCORSConfig allows the local development frontend.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}
}

// CORS handles Cross-Origin Resource Sharing. Preflight requests are
// answered here and never reach the handler.
func CORS(config *CORSConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := config != nil && origin != "" &&
				(slices.Contains(config.AllowedOrigins, "*") || slices.Contains(config.AllowedOrigins, origin))

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")

				methods := "GET, POST, DELETE, OPTIONS"
				if len(config.AllowedMethods) > 0 {
					methods = strings.Join(config.AllowedMethods, ", ")
				}
				headers := "Content-Type, X-Request-ID"
				if len(config.AllowedHeaders) > 0 {
					headers = strings.Join(config.AllowedHeaders, ", ")
				}
				if config.MaxAge > 0 {
					w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
				}
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
			}

			if r.Method == http.MethodOptions {
				if allowed {
					w.WriteHeader(http.StatusOK)
				} else {
					w.WriteHeader(http.StatusForbidden)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
