// Package notify queues operator notifications for saved leads. Jobs are
// picked up by internal/worker, so a slow or failing dispatcher never holds
// up the visitor's request.
package notify

import (
	"context"
	"fmt"

	"leadintake/internal/config"
	"leadintake/internal/submission"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"
	"leadintake/pkg/storage"

	"go.uber.org/zap"
)

// Options configure how notification jobs are enqueued.
type Options struct {
	// MaxAttempts is how many times a job runs before River discards it.
	MaxAttempts int
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{MaxAttempts: cfg.Notification.MaxAttempts}
}

// Queue enqueues notification jobs through the elevated storage. Call Notify
// only after the lead is committed.
type Queue struct {
	jobs    storage.JobStorage
	options Options
}

var _ submission.Notifier = (*Queue)(nil)

// NewQueue creates a Queue.
func NewQueue(jobs storage.JobStorage, options Options) *Queue {
	if options.MaxAttempts < 1 {
		options.MaxAttempts = 1
	}

	return &Queue{jobs: jobs, options: options}
}

// Notify enqueues a notification job for leadID.
func (q *Queue) Notify(ctx context.Context, leadID domain.LeadID, notification domain.Notification) error {
	added, err := q.jobs.AddJob(ctx, JobArgs{
		LeadID:       leadID.String(),
		Notification: notification,
		maxAttempts:  q.options.MaxAttempts,
	}, nil)
	if err != nil {
		return fmt.Errorf("could not enqueue lead notification: %w", err)
	}
	if !added {
		logger.Debug(ctx, "lead notification already queued", zap.String("lead_id", leadID.String()))
	}

	return nil
}
