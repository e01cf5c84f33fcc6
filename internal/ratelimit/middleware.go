package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"leadintake/pkg/logger"

	"go.uber.org/zap"
)

// TooManyRequestsBody is returned when a client exceeds the limit.
const TooManyRequestsBody = `{"error":"Too many requests. Please try again later."}`

type retryAfter interface {
	RetryAfter() time.Duration
}

// Middleware rejects requests over the limit with 429. Requests are keyed by
// keyFn. Limiter errors let the request through so a Redis outage never
// blocks lead capture. A nil limiter disables the check.
func Middleware(l Limiter, keyFn func(r *http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if l == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := keyFn(r)

			allowed, err := l.Allow(ctx, key)
			if err != nil {
				logger.Warn(ctx, "rate limiter unavailable, allowing request", zap.Error(err))
				next.ServeHTTP(w, r)

				return
			}
			if !allowed {
				logger.Info(ctx, "rate limit exceeded", zap.String("key", key))
				if ra, ok := l.(retryAfter); ok {
					secs := int(math.Ceil(ra.RetryAfter().Seconds()))
					w.Header().Set("Retry-After", strconv.Itoa(secs))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(TooManyRequestsBody))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
