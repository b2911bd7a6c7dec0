package jobs

import "errors"

// Sentinel kinds for job errors.
var (
	ErrUnknownJob     = errors.New("unknown job type")
	ErrAlreadyRunning = errors.New("job already running")
	ErrNoSource       = errors.New("no bulk source configured")
)
