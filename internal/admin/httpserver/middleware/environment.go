package middleware

import (
	"context"
	"net/http"
	"strings"
)

type environmentContextKey struct{}

// Environment attaches the deployment environment label to the request
// context. Empty values default to "Development".
func Environment(value string) func(http.Handler) http.Handler {
	label := strings.TrimSpace(value)
	if label == "" {
		label = "Development"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), environmentContextKey{}, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// EnvironmentFromContext returns the environment label for the current request.
func EnvironmentFromContext(ctx context.Context) string {
	if ctx == nil {
		return "Development"
	}
	if value, ok := ctx.Value(environmentContextKey{}).(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return "Development"
}
