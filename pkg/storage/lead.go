package storage

import (
	"context"
	"leadintake/pkg/domain"
	"time"
)

// LeadOrderField names a column leads can be ordered by.
type LeadOrderField string

const (
	OrderByCreatedAt LeadOrderField = "created_at"
	OrderByUpdatedAt LeadOrderField = "updated_at"
	OrderByName      LeadOrderField = "name"
	OrderByEmail     LeadOrderField = "email"
)

// Valid reports whether f is one of the orderable columns.
func (f LeadOrderField) Valid() bool {
	switch f {
	case OrderByCreatedAt, OrderByUpdatedAt, OrderByName, OrderByEmail:
		return true
	default:
		return false
	}
}

// OrderDirection is either ascending or descending.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// Valid reports whether d is asc or desc.
func (d OrderDirection) Valid() bool {
	return d == OrderAsc || d == OrderDesc
}

// LeadFilter selects and orders leads. Zero values disable the corresponding
// restriction; OrderBy and Direction must be set by the caller.
type LeadFilter struct {
	// Source, when non-empty, restricts results to leads with that source.
	Source string
	// CreatedFrom and CreatedTo, when non-zero, bound created_at (inclusive).
	CreatedFrom time.Time
	CreatedTo   time.Time

	OrderBy   LeadOrderField
	Direction OrderDirection
	// Limit of zero means no limit.
	Limit  uint
	Offset uint
}

// LeadPage is a page of leads together with the number of leads matching the
// filter regardless of pagination.
type LeadPage struct {
	Leads []domain.Lead
	Total int64
}

// LeadUpdates lists the fields to replace on an existing lead. Only non-nil
// fields are changed; updated_at is always refreshed.
type LeadUpdates struct {
	Name        *string
	Email       *string
	PhoneNumber *string
	// InterestedTraining, when set to an empty Training, clears the column.
	InterestedTraining *domain.Training
	Source             *string
}

// LeadStorage defines persistence operations on leads.
type LeadStorage interface {
	// StoreLead inserts a lead and returns it as stored, including generated
	// fields.
	StoreLead(ctx context.Context, lead domain.NewLead) (*domain.Lead, error)
	// LeadByID returns the lead with the given ID, or nil when not found.
	LeadByID(ctx context.Context, ID domain.LeadID) (*domain.Lead, error)
	// LatestLeadByEmail returns the most recently created lead with the given
	// email, or nil when none exists.
	LatestLeadByEmail(ctx context.Context, email string) (*domain.Lead, error)
	// Leads returns a page of leads matching filter.
	Leads(ctx context.Context, filter LeadFilter) (LeadPage, error)
	// UpdateLead applies updates to the lead and returns the updated row, or
	// nil when not found.
	UpdateLead(ctx context.Context, ID domain.LeadID, updates LeadUpdates) (*domain.Lead, error)
	// DeleteLead removes the lead and returns the deleted row, or nil when not
	// found.
	DeleteLead(ctx context.Context, ID domain.LeadID) (*domain.Lead, error)
	// LeadCount counts leads created at or after since; a zero since counts
	// every lead.
	LeadCount(ctx context.Context, since time.Time) (int64, error)
	// LeadCountBySource counts leads grouped by source.
	LeadCountBySource(ctx context.Context) (map[string]int64, error)
}
