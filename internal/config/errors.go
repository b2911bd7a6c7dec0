package config

import (
	"errors"
)

// Sentinel errors callers can match with errors.Is.
var (
	// ErrInvalidConfig marks a configuration that failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrLoadConfig marks a failure reading or merging config sources.
	ErrLoadConfig = errors.New("config load failed")
)
