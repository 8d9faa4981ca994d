package analysis

import "errors"

var (
	// ErrNotFound indicates the analysis job does not exist.
	ErrNotFound = errors.New("analysis job not found")

	// ErrInputUnavailable indicates the upstream fact extraction has not
	// produced output for the case; the pipeline never starts.
	ErrInputUnavailable = errors.New("extraction output unavailable for case")

	// ErrRunInProgress indicates a job for the case is already queued or
	// processing; callers must not schedule two concurrent runs.
	ErrRunInProgress = errors.New("analysis already in progress for case")
)
