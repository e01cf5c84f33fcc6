// Package storage defines the persistence interfaces the lead intake service
// relies on. Concrete backends (pkg/storage/postgres) implement them.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"context"
	"leadintake/pkg/domain"
)

// AllStorage groups every domain capability a storage handle exposes.
type AllStorage interface {
	LeadStorage
	JobStorage
}

// TxStorage is a storage handle bound to an open transaction. It becomes
// unusable after Commit or Rollback.
type TxStorage interface {
	AllStorage

	// Commit persists every change made through the handle.
	Commit() error
	// Rollback discards every change made through the handle.
	Rollback() error
}

// IdentityOptions tunes the transaction opened by WithIdentity.
type IdentityOptions struct {
	// ReadOnly opens a read-only repeatable-read transaction so that several
	// queries observe the same snapshot.
	ReadOnly bool
}

// Storage is a non-transactional handle able to start transactions.
type Storage interface {
	AllStorage

	// Close releases the underlying connection pool.
	Close() error
	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Begin starts a new transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx runs cb inside a transaction, committing when cb returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
	// WithIdentity runs cb inside a transaction whose database session acts on
	// behalf of identity: request claims are set and the session role is
	// switched so row-level security policies apply to every query cb makes.
	WithIdentity(ctx context.Context,
		identity domain.Identity,
		opts IdentityOptions,
		cb func(storage AllStorage) error) error
}
