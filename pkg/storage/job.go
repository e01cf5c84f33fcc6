package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage enqueues background jobs in the database-backed queue. When the
// handle is transactional the job becomes visible only once the transaction
// commits.
type JobStorage interface {
	// AddJob enqueues a job. The returned bool is false when River skipped the
	// insert as a duplicate of a unique job.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
