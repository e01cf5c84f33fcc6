// Package submission turns a visitor's contact details into a stored lead and
// an operator notification. Its only output is a Result; errors and panics
// never cross the Submit boundary.
package submission

import (
	"context"
	"fmt"
	"strings"

	"leadintake/internal/config"
	"leadintake/internal/leads"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"
	"leadintake/pkg/metrics"
	"leadintake/pkg/reporter"
	"leadintake/pkg/serrors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

//go:generate mockgen -package mocksubmission -source=handler.go -destination=mock/mocksubmission.go Notifier

// Outcome labels recorded on the submissions counter.
const (
	OutcomeSuccess       = "success"
	OutcomeMissingFields = "missing_fields"
	OutcomeSaveFailed    = "save_failed"
	OutcomePanic         = "panic"
	OutcomeNotifyFailed  = "notify_failed"
)

// Input is the contact data submitted by a visitor.
type Input struct {
	Name               string
	Email              string
	Phone              string
	InterestedTraining *domain.Training
}

// Notifier hands a saved lead to the operator notification channel. Errors
// are logged by the caller and never change the submission result.
type Notifier interface {
	Notify(ctx context.Context, leadID domain.LeadID, notification domain.Notification) error
}

// Options configure the handler.
type Options struct {
	// Source is the campaign tag stored on every lead created by the handler.
	Source string
	// NotificationEmail is the operator address copied into notifications.
	NotificationEmail string
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Source:            cfg.Leads.Source,
		NotificationEmail: cfg.Notification.OperatorEmail,
	}
}

// Handler processes lead submissions.
type Handler struct {
	writer   leads.PublicWriter
	notifier Notifier
	options  Options

	counter metrics.Counter
	tracer  trace.Tracer
}

// New creates a Handler. The submissions counter is registered on the global
// meter provider.
func New(writer leads.PublicWriter, notifier Notifier, options Options) *Handler {
	if options.Source == "" {
		options.Source = domain.DefaultSource
	}

	return &Handler{
		writer:   writer,
		notifier: notifier,
		options:  options,
		counter:  metrics.NewCounter(nil, "leads.submissions", "Lead form submissions by outcome"),
		tracer:   otel.Tracer(metrics.InstrumentationName),
	}
}

// Submit stores the lead and queues its notification. It always returns a
// Result.
func (h *Handler) Submit(ctx context.Context, in Input) (res Result) {
	ctx, span := h.tracer.Start(ctx, "submission.Submit")
	defer span.End()

	outcome := OutcomeSuccess
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "lead submission panicked", zap.Any("panic", r), zap.Stack("stack"))
			reporter.Recovered(ctx, r)
			span.SetStatus(codes.Error, "panic")
			res = Failure(serrors.ErrInternal, UnexpectedMessage)
			outcome = OutcomePanic
		}
		h.counter.Add(ctx, outcome)
	}()

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" {
		outcome = OutcomeMissingFields

		return Failure(serrors.ErrBadRequest, RequiredFieldsMessage)
	}

	lead, err := h.writer.Create(ctx, domain.NewLead{
		Name:               name,
		Email:              email,
		PhoneNumber:        phone,
		InterestedTraining: in.InterestedTraining,
		Source:             h.options.Source,
	})
	if err != nil {
		logger.Error(ctx, "could not save lead", zap.Error(err), zap.String("email", email))
		reporter.CaptureError(ctx, err, map[string]any{"source": h.options.Source})
		span.RecordError(err)
		span.SetStatus(codes.Error, "save failed")
		outcome = OutcomeSaveFailed

		return Failure(serrors.ErrInternal, SaveFailedMessage)
	}

	ctx = logger.WithFields(ctx, zap.String("lead_id", lead.ID.String()))
	if err := h.notify(ctx, lead); err != nil {
		// the lead is saved; a lost notification is only logged
		logger.Warn(ctx, "could not queue lead notification", zap.Error(err))
		span.RecordError(err)
		h.counter.Add(ctx, OutcomeNotifyFailed)
	}

	logger.Info(ctx, "lead saved")

	return Success(SuccessMessage)
}

func (h *Handler) notify(ctx context.Context, lead *domain.Lead) (err error) {
	if h.notifier == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panicked: %v", r)
		}
	}()

	var training string
	if lead.InterestedTraining != nil {
		training = string(*lead.InterestedTraining)
	}

	return h.notifier.Notify(ctx, lead.ID, domain.Notification{
		Name:               lead.Name,
		Email:              lead.Email,
		Phone:              lead.PhoneNumber,
		InterestedTraining: training,
		NotificationEmail:  h.options.NotificationEmail,
	})
}
