package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadintake/internal/notify"
	"leadintake/pkg/logger"
	"leadintake/pkg/metrics"
	"leadintake/pkg/notifier"
	"leadintake/pkg/serrors"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// DefaultRateLimitSnooze is how long a job waits after the dispatcher reports
// it is rate limited.
const DefaultRateLimitSnooze = time.Minute

// NotificationOptions configure the notification worker.
type NotificationOptions struct {
	// FunctionName is passed to the dispatcher on every call.
	FunctionName string
	// Timeout bounds a single dispatch. Zero uses River's default.
	Timeout time.Duration
	// RateLimitSnooze overrides DefaultRateLimitSnooze.
	RateLimitSnooze time.Duration
}

// NotificationWorker is a River worker that delivers lead notifications
// through a notifier.Dispatcher. Delivery failures only reach logs and the
// leads.notifications counter; the lead itself is already saved.
//
// A missing function cancels the job and a rate-limited dispatcher snoozes
// it. Other errors are returned so River can retry up to the job's
// MaxAttempts.
type NotificationWorker struct {
	river.WorkerDefaults[notify.JobArgs]

	dispatcher notifier.Dispatcher
	options    NotificationOptions
	counter    metrics.Counter
}

// NewNotificationWorker constructs a NotificationWorker.
func NewNotificationWorker(dispatcher notifier.Dispatcher, options NotificationOptions) *NotificationWorker {
	if options.RateLimitSnooze <= 0 {
		options.RateLimitSnooze = DefaultRateLimitSnooze
	}

	return &NotificationWorker{
		dispatcher: dispatcher,
		options:    options,
		counter:    metrics.NewCounter(nil, "leads.notifications", "Lead notification deliveries by outcome"),
	}
}

// Timeout returns the per-job deadline.
func (n *NotificationWorker) Timeout(*river.Job[notify.JobArgs]) time.Duration {
	return n.options.Timeout
}

// Work dispatches a single notification.
func (n *NotificationWorker) Work(ctx context.Context, job *river.Job[notify.JobArgs]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.String("lead_id", job.Args.LeadID),
		zap.Int("attempt", job.Attempt))

	err := n.dispatcher.Invoke(ctx, n.options.FunctionName, job.Args.Notification)
	if err == nil {
		n.counter.Add(ctx, "sent")
		logger.Info(ctx, "lead notification sent")

		return nil
	}

	logger.Error(ctx, "could not send lead notification", zap.Error(err))

	switch {
	case errors.Is(err, serrors.ErrNotFound):
		n.counter.Add(ctx, "cancelled")

		return river.JobCancel(err) //nolint: wrapcheck
	case errors.Is(err, serrors.ErrRateLimited):
		n.counter.Add(ctx, "snoozed")

		return river.JobSnooze(n.options.RateLimitSnooze) //nolint: wrapcheck
	default:
		n.counter.Add(ctx, "failed")

		return fmt.Errorf("could not send lead notification: %w", err)
	}
}
