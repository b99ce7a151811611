package workflow

import "errors"

var (
	// ErrCheckpointNotFound is returned when resuming or inspecting a
	// ticket that has no stored checkpoint.
	ErrCheckpointNotFound = errors.New("workflow checkpoint not found")

	// ErrNoPendingReview is returned when a human decision arrives for a
	// workflow that is not paused at the review checkpoint.
	ErrNoPendingReview = errors.New("workflow has no pending human review")

	// ErrWorkflowFinished is returned when an operation targets a workflow
	// that already reached a terminal state.
	ErrWorkflowFinished = errors.New("workflow already finished")
)
