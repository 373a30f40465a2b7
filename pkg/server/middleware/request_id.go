package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// RequestIDContextKey is the context key for storing request IDs
const RequestIDContextKey ContextKey = "request_id"

// RequestIDHeader is the header name for request IDs
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLength = 64

// GetRequestID extracts request ID from request context
func GetRequestID(r *http.Request) string {
	if id, ok := r.Context().Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// sanitizeRequestID keeps alphanumerics, dash, underscore and dot.
func sanitizeRequestID(id string) string {
	var result strings.Builder
	result.Grow(len(id))

	for _, c := range id {
		if (c >= 'a' && c <= 'z') ||
			(c >= 'A' && c <= 'Z') ||
			(c >= '0' && c <= '9') ||
			c == '-' || c == '_' || c == '.' {
			result.WriteRune(c)
		}
	}

	return result.String()
}

// RequestID propagates the caller's X-Request-ID, sanitized and truncated,
// or assigns a new UUID. The id is echoed in the response and stored in the
// request context.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)

			if requestID != "" {
				if len(requestID) > maxRequestIDLength {
					requestID = requestID[:maxRequestIDLength]
				}
				requestID = sanitizeRequestID(requestID)
			}

			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(RequestIDHeader, requestID)

			ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
