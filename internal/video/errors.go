package video

import "errors"

// Sentinel kinds for video errors.
var (
	ErrNoMedia    = errors.New("no media url found on page")
	ErrNoPlayID   = errors.New("no video identifier for swing")
	ErrDownload   = errors.New("clip download failed")
	ErrEmptyInput = errors.New("identifier and media url are required")
)
