// Package intake implements the lead capture form: it holds the visitor's
// input, validates it, submits it once at a time and keeps the resulting
// banner or per-field errors for display.
package intake

import (
	"context"
	"errors"
	"sync"

	"leadintake/internal/submission"
	"leadintake/internal/validation"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"
	"leadintake/pkg/serrors"

	"go.uber.org/zap"
)

// ErrSubmitInFlight is returned by Submit while a previous submission has not
// finished.
var ErrSubmitInFlight = errors.New("submission already in progress")

// State is the form's position in its submit cycle.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Outcome is how the last submit attempt ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeInvalid
	OutcomeSuccess
	OutcomeFailure
)

// Fields are the raw values typed into the form.
type Fields struct {
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	InterestedTraining string `json:"interested_training"`
}

// Banner is the single message shown after a submission finishes.
type Banner struct {
	Success bool
	Message string
}

// Submitter accepts validated contact data.
type Submitter interface {
	Submit(ctx context.Context, in submission.Input) submission.Result
}

// Form is safe for concurrent use; concurrent Submit calls are rejected
// rather than queued.
type Form struct {
	submitter Submitter

	mu      sync.Mutex
	fields  Fields
	state   State
	outcome Outcome
	errors  validation.FieldErrors
	banner  *Banner
}

// New returns an idle, empty form.
func New(submitter Submitter) *Form {
	return &Form{submitter: submitter}
}

// Set replaces the form values.
func (f *Form) Set(fields Fields) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields = fields
}

func (f *Form) Fields() Fields {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.fields
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.state
}

func (f *Form) Outcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.outcome
}

// Errors returns the per-field messages of the last invalid submit.
func (f *Form) Errors() validation.FieldErrors {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.errors
}

// Banner returns the banner of the last completed submission, or nil.
func (f *Form) Banner() *Banner {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.banner
}

// trainingOf maps the selected option to a Training. Anything outside the
// offered programs counts as no selection.
func trainingOf(v string) *domain.Training {
	t := domain.Training(v)
	if !t.Valid() {
		return nil
	}

	return &t
}

// Submit validates the current values and, when they are valid, passes them
// to the submitter. Invalid values return a serrors.ErrValidation error that
// wraps validation.FieldErrors and the submitter is not called. On success
// the fields are cleared; on failure they are kept for the visitor to retry.
func (f *Form) Submit(ctx context.Context) (submission.Result, error) {
	f.mu.Lock()
	if f.state != StateIdle {
		f.mu.Unlock()

		return submission.Result{}, ErrSubmitInFlight
	}
	f.state = StateValidating
	f.errors = nil
	f.banner = nil

	contact := validation.Normalize(validation.Contact{
		Name:  f.fields.Name,
		Email: f.fields.Email,
		Phone: f.fields.Phone,
	})
	if errs := validation.Validate(contact); errs != nil {
		f.errors = errs
		f.outcome = OutcomeInvalid
		f.state = StateIdle
		f.mu.Unlock()

		return submission.Result{}, serrors.Wrap(serrors.ErrValidation, errs, "invalid lead form")
	}

	input := submission.Input{
		Name:               contact.Name,
		Email:              contact.Email,
		Phone:              contact.Phone,
		InterestedTraining: trainingOf(f.fields.InterestedTraining),
	}
	f.state = StateSubmitting
	f.mu.Unlock()

	res := f.call(ctx, input)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.banner = &Banner{Success: res.OK(), Message: res.Message()}
	if res.OK() {
		f.fields = Fields{}
		f.outcome = OutcomeSuccess
	} else {
		f.outcome = OutcomeFailure
	}
	f.state = StateIdle

	return res, nil
}

func (f *Form) call(ctx context.Context, input submission.Input) (res submission.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "lead submitter panicked", zap.Any("panic", r))
			res = submission.Failure(serrors.ErrInternal, submission.UnexpectedMessage)
		}
	}()

	res = f.submitter.Submit(ctx, input)
	if res.IsZero() || (!res.OK() && res.Message() == "") {
		return submission.Failure(serrors.ErrInternal, submission.UnexpectedMessage)
	}

	return res
}
