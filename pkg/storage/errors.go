package storage

import "errors"

// Common errors returned by storage implementations.
var (
	// ErrAlreadyInTx is returned when a transaction is started on a handle that
	// is already transactional.
	ErrAlreadyInTx = errors.New("already in tx")
	// ErrNotInTx is returned by Commit or Rollback on a non-transactional handle.
	ErrNotInTx = errors.New("not in tx")
)
