package controller

import (
	"net/http"

	"github.com/go-chi/cors"
)

const corsMaxAge = 300

// WithCORS returns a middleware that answers CORS preflight requests and sets
// CORS headers for the given origins. An empty list allows any origin.
func WithCORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         corsMaxAge,
	})
}
