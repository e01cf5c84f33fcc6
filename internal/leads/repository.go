package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadintake/internal/validation"
	"leadintake/pkg/domain"
	"leadintake/pkg/serrors"
	"leadintake/pkg/storage"
)

const (
	// DefaultLimit is the page size used when ListOptions.Limit is zero.
	DefaultLimit = 50
	// MaxLimit caps ListOptions.Limit.
	MaxLimit = 500
	// RecentWindow is how far back Stats counts recent leads.
	RecentWindow = 7 * 24 * time.Hour
)

// ListOptions selects a page of leads. Empty fields take their defaults:
// created_at descending, DefaultLimit rows.
type ListOptions struct {
	Source    string
	OrderBy   string
	Direction string
	Limit     uint
	Offset    uint
}

func (o ListOptions) filter() (storage.LeadFilter, error) {
	f := storage.LeadFilter{
		Source:    o.Source,
		OrderBy:   storage.OrderByCreatedAt,
		Direction: storage.OrderDesc,
		Limit:     o.Limit,
		Offset:    o.Offset,
	}
	if o.OrderBy != "" {
		f.OrderBy = storage.LeadOrderField(o.OrderBy)
		if !f.OrderBy.Valid() {
			return f, serrors.With(serrors.ErrBadRequest, "cannot order leads by %q", o.OrderBy)
		}
	}
	if o.Direction != "" {
		f.Direction = storage.OrderDirection(strings.ToLower(o.Direction))
		if !f.Direction.Valid() {
			return f, serrors.With(serrors.ErrBadRequest, "invalid order direction %q", o.Direction)
		}
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}

	return f, nil
}

// Repository hands out lead access handles. The elevated storage bypasses
// row-level security; the session storage is only used through WithIdentity.
type Repository struct {
	elevated storage.Storage
	session  storage.Storage
	now      func() time.Time
}

// New creates a Repository over the two storage connections.
func New(elevated, session storage.Storage) *Repository {
	return &Repository{
		elevated: elevated,
		session:  session,
		now:      time.Now,
	}
}

// Writer returns the handle used by the public submission path.
func (r *Repository) Writer() PublicWriter {
	return publicWriter{storage: r.elevated}
}

// As returns a handle acting on behalf of identity.
func (r *Repository) As(identity domain.Identity) ScopedReader {
	return scopedReader{storage: r.session, identity: identity, now: r.now}
}

type publicWriter struct {
	storage storage.Storage
}

func (w publicWriter) Create(ctx context.Context, lead domain.NewLead) (*domain.Lead, error) {
	lead.Source = lead.SourceOrDefault()

	stored, err := w.storage.StoreLead(ctx, lead)
	if err != nil {
		return nil, fmt.Errorf("could not create lead: %w", err)
	}

	return stored, nil
}

type scopedReader struct {
	storage  storage.Storage
	identity domain.Identity
	now      func() time.Time
}

func (s scopedReader) withIdentity(ctx context.Context, readOnly bool, cb func(tx storage.AllStorage) error) error {
	return s.storage.WithIdentity(ctx, s.identity, storage.IdentityOptions{ReadOnly: readOnly}, cb)
}

func (s scopedReader) GetByID(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	var lead *domain.Lead
	if err := s.withIdentity(ctx, false, func(tx storage.AllStorage) error {
		var err error
		lead, err = tx.LeadByID(ctx, id)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not get lead: %w", err)
	}
	if lead == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return lead, nil
}

func (s scopedReader) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	email = validation.NormalizeEmail(email)
	if email == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "email is required")
	}

	var lead *domain.Lead
	if err := s.withIdentity(ctx, false, func(tx storage.AllStorage) error {
		var err error
		lead, err = tx.LatestLeadByEmail(ctx, email)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not get lead by email: %w", err)
	}
	if lead == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return lead, nil
}

func (s scopedReader) list(ctx context.Context, filter storage.LeadFilter) (storage.LeadPage, error) {
	var page storage.LeadPage
	if err := s.withIdentity(ctx, true, func(tx storage.AllStorage) error {
		var err error
		page, err = tx.Leads(ctx, filter)

		return err
	}); err != nil {
		return storage.LeadPage{}, fmt.Errorf("could not list leads: %w", err)
	}

	return page, nil
}

func (s scopedReader) List(ctx context.Context, opts ListOptions) (storage.LeadPage, error) {
	filter, err := opts.filter()
	if err != nil {
		return storage.LeadPage{}, err
	}

	return s.list(ctx, filter)
}

func (s scopedReader) ListByDateRange(ctx context.Context,
	start, end time.Time,
	source string) (storage.LeadPage, error) {
	if start.IsZero() || end.IsZero() {
		return storage.LeadPage{}, serrors.With(serrors.ErrBadRequest, "start and end are required")
	}
	if start.After(end) {
		return storage.LeadPage{}, serrors.With(serrors.ErrBadRequest, "start must not be after end")
	}

	// the whole range is returned in one page
	return s.list(ctx, storage.LeadFilter{
		Source:      source,
		CreatedFrom: start,
		CreatedTo:   end,
		OrderBy:     storage.OrderByCreatedAt,
		Direction:   storage.OrderDesc,
	})
}

func normalizePatch(patch storage.LeadUpdates) (storage.LeadUpdates, error) {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)

		return &t
	}
	patch.Name = trim(patch.Name)
	patch.PhoneNumber = trim(patch.PhoneNumber)
	patch.Source = trim(patch.Source)
	if patch.Email != nil {
		e := validation.NormalizeEmail(*patch.Email)
		patch.Email = &e
	}

	if errs := validation.ValidatePatch(patch.Name, patch.Email, patch.PhoneNumber); errs != nil {
		return patch, serrors.Wrap(serrors.ErrValidation, errs, "invalid lead update")
	}
	if t := patch.InterestedTraining; t != nil && *t != "" && !t.Valid() {
		return patch, serrors.With(serrors.ErrBadRequest, "unknown training %q", *t)
	}
	if patch.Source != nil && *patch.Source == "" {
		return patch, serrors.With(serrors.ErrBadRequest, "source cannot be empty")
	}

	return patch, nil
}

func (s scopedReader) Update(ctx context.Context, id domain.LeadID, patch storage.LeadUpdates) (*domain.Lead, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	var lead *domain.Lead
	if err := s.withIdentity(ctx, false, func(tx storage.AllStorage) error {
		var err error
		lead, err = tx.UpdateLead(ctx, id, patch)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update lead: %w", err)
	}
	if lead == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return lead, nil
}

func (s scopedReader) Delete(ctx context.Context, id domain.LeadID) error {
	var lead *domain.Lead
	if err := s.withIdentity(ctx, false, func(tx storage.AllStorage) error {
		var err error
		lead, err = tx.DeleteLead(ctx, id)

		return err
	}); err != nil {
		return fmt.Errorf("could not delete lead: %w", err)
	}
	if lead == nil {
		return serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return nil
}

// Stats runs its three counts in one read-only snapshot so the per-source
// breakdown always adds up to the total.
func (s scopedReader) Stats(ctx context.Context) (*domain.LeadStats, error) {
	stats := domain.LeadStats{}
	since := s.now().Add(-RecentWindow)

	if err := s.withIdentity(ctx, true, func(tx storage.AllStorage) error {
		var err error
		if stats.Total, err = tx.LeadCount(ctx, time.Time{}); err != nil {
			return fmt.Errorf("could not count leads: %w", err)
		}
		if stats.BySource, err = tx.LeadCountBySource(ctx); err != nil {
			return fmt.Errorf("could not count leads by source: %w", err)
		}
		if stats.RecentCount, err = tx.LeadCount(ctx, since); err != nil {
			return fmt.Errorf("could not count recent leads: %w", err)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not compute lead stats: %w", err)
	}

	return &stats, nil
}
