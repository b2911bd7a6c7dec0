package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrInvalidCandidate = errors.New("pitch event is not a scorable candidate")
)
