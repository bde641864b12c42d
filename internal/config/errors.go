package config

import (
	"errors"
)

// Sentinel error kinds for this package. Callers match them with errors.Is.
var (
	// ErrLoadConfig wraps failures reading or parsing external config sources.
	ErrLoadConfig = errors.New("load config failed")

	// ErrInvalidConfig marks values that fail validation after merging.
	ErrInvalidConfig = errors.New("invalid config")
)
