// Package reporter forwards unexpected errors and panics to Sentry. Every
// function is a no-op until Init is called with a non-empty DSN.
package reporter

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Options configure the Sentry client.
type Options struct {
	DSN              string
	Environment      string
	Release          string
	TracesSampleRate float64
}

// Init configures the global Sentry hub. An empty DSN leaves reporting disabled.
func Init(opts Options) error {
	if opts.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		Release:          opts.Release,
		TracesSampleRate: opts.TracesSampleRate,
	}); err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}

	return nil
}

// Flush waits up to timeout for buffered events to be sent.
func Flush(timeout time.Duration) {
	sentry.Flush(timeout)
}

func hub(ctx context.Context) *sentry.Hub {
	if h := sentry.GetHubFromContext(ctx); h != nil {
		return h
	}

	return sentry.CurrentHub()
}

// CaptureError reports err with the given extra context.
func CaptureError(ctx context.Context, err error, extra map[string]any) {
	h := hub(ctx)
	if h == nil || h.Client() == nil {
		return
	}

	h.WithScope(func(scope *sentry.Scope) {
		for k, v := range extra {
			scope.SetExtra(k, v)
		}
		h.CaptureException(err)
	})
}

// Recovered reports a value returned by recover.
func Recovered(ctx context.Context, r any) {
	h := hub(ctx)
	if h == nil || h.Client() == nil {
		return
	}

	h.RecoverWithContext(ctx, r)
}
