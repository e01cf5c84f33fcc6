package v1handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"leadintake/internal/intake"
	"leadintake/internal/leads"
	"leadintake/internal/validation"
	"leadintake/pkg/domain"
	"leadintake/pkg/logger"
	"leadintake/pkg/reporter"
	"leadintake/pkg/serrors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LeadReaders hands out lead handles bound to a caller identity.
type LeadReaders interface {
	As(identity domain.Identity) leads.ScopedReader
}

type Deps struct {
	Leads     LeadReaders
	Submitter intake.Submitter
}

type Handler struct {
	deps Deps
}

func New(deps Deps) *Handler {
	return &Handler{deps: deps}
}

// Routes registers the v1 endpoints on r. limit wraps the public submission
// endpoint; sec guards the admin endpoints.
func (h *Handler) Routes(r chi.Router, sec *SecHandler, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.With(limit).Post("/leads", h.CreateLead)

	r.Route("/admin/leads", func(r chi.Router) {
		r.Use(sec.Middleware)

		r.Get("/", h.ListLeads)
		r.Get("/by-email", h.GetLeadByEmail)
		r.Get("/range", h.ListLeadsByDateRange)
		r.Get("/stats", h.LeadStats)
		r.Get("/{id}", h.GetLead)
		r.Patch("/{id}", h.UpdateLead)
		r.Delete("/{id}", h.DeleteLead)
	})
}

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Fields  validation.FieldErrors `json:"fields,omitempty"`
}

// ErrorResponse pairs an ErrorBody with its HTTP status.
type ErrorResponse struct {
	StatusCode int
	Response   ErrorBody
}

func statusOf(kind serrors.Kind) (int, string) {
	switch kind {
	case serrors.ErrNotFound:
		return http.StatusNotFound, "resource not found"
	case serrors.ErrBadRequest:
		return http.StatusBadRequest, "bad request"
	case serrors.ErrValidation:
		return http.StatusUnprocessableEntity, "validation failed"
	case serrors.ErrUnauthorized:
		return http.StatusUnauthorized, "unauthorized"
	case serrors.ErrForbidden:
		return http.StatusForbidden, "forbidden"
	case serrors.ErrConflict:
		return http.StatusConflict, "conflict"
	case serrors.ErrRateLimited:
		return http.StatusTooManyRequests, "too many requests"
	case serrors.ErrTimeout:
		return http.StatusGatewayTimeout, "timeout"
	case serrors.ErrUnavailable:
		return http.StatusServiceUnavailable, "service unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// NewError maps err to a response. Internal errors are logged and reported
// and their detail is never returned.
func (h Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	return newError(ctx, err)
}

func newError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	status, message := statusOf(kind)

	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
		reporter.CaptureError(ctx, err, nil)
		kind = serrors.ErrInternal
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err))
		if msg := serrors.MessageOf(err); msg != "" {
			message = msg
		}
	}

	res := &ErrorResponse{
		StatusCode: status,
		Response:   ErrorBody{Code: kind.Error(), Message: message},
	}

	var fields validation.FieldErrors
	if kind == serrors.ErrValidation && errors.As(err, &fields) {
		res.Response.Fields = fields
	}

	return res
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(ctx, "could not write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := newError(r.Context(), err)
	writeJSON(r.Context(), w, res.StatusCode, res.Response)
}
