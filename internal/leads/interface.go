// Package leads is the access layer for lead records. It hands out two
// handles with different privileges: a PublicWriter that creates leads on
// behalf of anonymous visitors, and a ScopedReader that acts for an
// authenticated caller under the database's row-level security policies.
package leads

import (
	"context"
	"leadintake/pkg/domain"
	"leadintake/pkg/storage"
	"time"
)

//go:generate mockgen -package mockleads -source=interface.go -destination=mock/mockleads.go *

// PublicWriter creates leads through the elevated connection.
type PublicWriter interface {
	// Create inserts lead, defaulting its source, and returns the stored record.
	Create(ctx context.Context, lead domain.NewLead) (*domain.Lead, error)
}

// ScopedReader reads and administers leads as a specific identity. Rows the
// identity may not see behave as if they did not exist.
type ScopedReader interface {
	GetByID(ctx context.Context, id domain.LeadID) (*domain.Lead, error)
	// GetByEmail returns the most recent lead submitted with email.
	GetByEmail(ctx context.Context, email string) (*domain.Lead, error)
	List(ctx context.Context, opts ListOptions) (storage.LeadPage, error)
	Update(ctx context.Context, id domain.LeadID, patch storage.LeadUpdates) (*domain.Lead, error)
	Delete(ctx context.Context, id domain.LeadID) error
	// ListByDateRange returns leads created in [start, end], newest first.
	ListByDateRange(ctx context.Context, start, end time.Time, source string) (storage.LeadPage, error)
	Stats(ctx context.Context) (*domain.LeadStats, error)
}
