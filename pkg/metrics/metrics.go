// Package metrics holds shared instrumentation helpers. HTTP metrics are
// Prometheus collectors; domain outcomes are OpenTelemetry instruments which
// the API server exports through the Prometheus registry.
package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// InstrumentationName is the meter and tracer name used by the service.
const InstrumentationName = "leadintake"

// OutcomeKey is the attribute carrying the result of a counted operation.
const OutcomeKey = attribute.Key("outcome")

// Counter counts operation outcomes on an OpenTelemetry counter.
type Counter struct {
	c metric.Int64Counter
}

// NewCounter creates a counter on mp. A nil provider uses the global one.
// Instrument errors fall back to a no-op counter.
func NewCounter(mp metric.MeterProvider, name, description string) Counter {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	c, err := mp.Meter(InstrumentationName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(InstrumentationName).Int64Counter(name)
	}

	return Counter{c: c}
}

// Add increments the counter by one for outcome.
func (c Counter) Add(ctx context.Context, outcome string) {
	if c.c == nil {
		return
	}
	c.c.Add(ctx, 1, metric.WithAttributes(OutcomeKey.String(outcome)))
}
