// Package worker runs the River client that processes background jobs.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"leadintake/internal/config"
	"leadintake/pkg/logger"
	"leadintake/pkg/notifier"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.uber.org/zap/exp/zapslog"
)

// Options configure the River client.
type Options struct {
	// MaxWorkers is the number of jobs processed concurrently.
	MaxWorkers   int
	Notification NotificationOptions
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		MaxWorkers: cfg.Notification.Workers,
		Notification: NotificationOptions{
			FunctionName: cfg.Notification.Function.Name,
			Timeout:      cfg.Notification.Function.Timeout,
		},
	}
}

// NewWorkers registers every job worker.
func NewWorkers(dispatcher notifier.Dispatcher, opts Options) *river.Workers {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewNotificationWorker(dispatcher, opts.Notification))

	return workers
}

// Start creates and starts a River client on dbPool.
func Start(ctx context.Context,
	dbPool *pgxpool.Pool,
	dispatcher notifier.Dispatcher,
	opts Options) (*river.Client[pgx.Tx], error) {
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: opts.MaxWorkers},
		},
		Workers: NewWorkers(dispatcher, opts),
		Logger:  slog.New(zapslog.NewHandler(logger.Get(ctx).Core())),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
