package playbyplay

import "errors"

// Sentinel kinds for lookup errors.
var (
	ErrNotFound = errors.New("play id not found")
)
