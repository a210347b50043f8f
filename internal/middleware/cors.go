package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS lets the browser front end call the API from its own origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", IdempotencyKeyHeader, RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader, ReplayedHeader, "Location"},
		MaxAge:         600,
	})
	return c.Handler
}
