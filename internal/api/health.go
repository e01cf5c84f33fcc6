package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"leadintake/pkg/logger"

	"go.uber.org/zap"
)

const healthCheckTimeout = 2 * time.Second

const (
	statusHealthy   = "healthy"
	statusDegraded  = "degraded"
	statusUnhealthy = "unhealthy"
)

// HealthResponse is the body of /healthz.
type HealthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		res := HealthResponse{Status: statusHealthy, Dependencies: make(map[string]string, len(checks))}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn(ctx, "health check failed", zap.String("dependency", name), zap.Error(err))
				res.Dependencies[name] = statusUnhealthy
				res.Status = statusDegraded

				continue
			}
			res.Dependencies[name] = statusHealthy
		}

		status := http.StatusOK
		if res.Status != statusHealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(res)
	}
}
