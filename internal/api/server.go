// Package api configures and exposes the HTTP server, routes,
// metrics, docs and related middleware for the lead intake service.
package api

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"leadintake/internal/api/handler/v1handler"
	"leadintake/internal/config"
	"leadintake/internal/ratelimit"
	"leadintake/pkg/controller"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
type Options struct {
	// SecHandlerOptions configures bearer authentication of the admin endpoints.
	SecHandlerOptions *v1handler.SecHandlerOptions

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string
	// Debug mounts the pprof endpoints under /debug/pprof/.
	Debug bool
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),

		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		Debug:             cfg.HTTP.Debug,
	}
}

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Telemetry is the Prometheus registry served on the metrics path together
// with the OpenTelemetry meter provider exporting into it.
type Telemetry struct {
	Registry      *prometheus.Registry
	MeterProvider *sdkmetric.MeterProvider
}

// NewTelemetry creates a registry with the Go and process collectors and an
// OpenTelemetry meter provider backed by it.
func NewTelemetry() (*Telemetry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return &Telemetry{
		Registry:      reg,
		MeterProvider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)),
	}, nil
}

type Deps struct {
	v1handler.Deps

	// Limiter throttles lead submissions per client IP. Nil disables it.
	Limiter ratelimit.Limiter
	// Health lists the dependencies checked by /healthz, by name.
	Health map[string]HealthCheck
	// Telemetry receives HTTP and domain metrics. Nil creates a private one.
	Telemetry *Telemetry
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 API routes: the public lead form and the admin lead endpoints
// - /healthz
// - pprof endpoints when Debug is set
// The router is wrapped with logging, recovery, metrics and CORS middlewares
// and a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	if deps.Telemetry == nil {
		t, err := NewTelemetry()
		if err != nil {
			return nil, err
		}
		deps.Telemetry = t
	}

	secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
	if err != nil {
		return nil, fmt.Errorf("could not create sec handler: %w", err)
	}

	r := chi.NewRouter()
	r.Use(
		controller.WithLogger,
		controller.WithRecover,
		controller.WithMetrics(deps.Telemetry.Registry),
		controller.WithCORS(opts.CORSOrigins),
	)

	// prometheus metrics server
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	r.Handle(opts.MetricsPath, promhttp.HandlerFor(deps.Telemetry.Registry, promhttp.HandlerOpts{}))

	r.Get("/healthz", healthHandler(deps.Health))

	// v1 specs file
	r.Get("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})

	// v1 api
	v1 := v1handler.New(deps.Deps)
	limit := ratelimit.Middleware(deps.Limiter, controller.RemoteIP)
	r.Route("/v1", func(r chi.Router) {
		// v1 api swagger playground
		r.Handle("/docs/*", v5emb.New(
			"Lead Intake Service",
			"/specs/v1.yaml",
			"/v1/docs/",
		))

		v1.Routes(r, secHandler, limit)
	})

	// pprof
	if opts.Debug {
		r.Mount("/debug/pprof", http.StripPrefix("/debug/pprof", controller.PprofMux()))
	}

	handler := http.Handler(r)
	if opts.RequestTimeout > 0 {
		handler = http.TimeoutHandler(handler, opts.RequestTimeout, `{"error":"request timed out"}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}
