package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrVideoDisabled = errors.New("video processing is not configured")
)
