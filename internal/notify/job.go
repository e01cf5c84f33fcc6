package notify

import (
	"leadintake/pkg/domain"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobArgs contains the arguments for a lead notification job submitted to River.
type JobArgs struct {
	// LeadID identifies the saved lead. It is unique so a lead is never
	// announced twice while its job is still known to River.
	LeadID string `json:"lead_id" river:"unique"`
	// Notification is the payload handed to the dispatcher.
	Notification domain.Notification `json:"notification"`

	// maxAttempts configures the maximum number of times River runs the job.
	maxAttempts int
}

// Kind returns the River job kind used to register and dispatch the notification worker.
func (args JobArgs) Kind() string { return "NotifyLeadJob" }

// InsertOpts returns the River options that control how the job is enqueued.
func (args JobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStateCompleted,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
