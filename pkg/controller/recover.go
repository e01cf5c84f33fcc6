package controller

import (
	"net/http"

	"leadintake/pkg/logger"
	"leadintake/pkg/reporter"

	"go.uber.org/zap"
)

// InternalErrorBody is written when a handler panics.
const InternalErrorBody = `{"error":"An unexpected error occurred. Please try again."}`

// WithRecover converts handler panics into a 500 JSON response and reports
// them. http.ErrAbortHandler is re-panicked so net/http can abort the
// connection.
func WithRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler { //nolint: errorlint, err113
				panic(p)
			}

			ctx := r.Context()
			logger.Error(ctx, "handler panicked", zap.Any("panic", p), zap.String("url", r.URL.String()))
			reporter.Recovered(ctx, p)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(InternalErrorBody))
		}()

		next.ServeHTTP(w, r)
	})
}
