package service

import "errors"

// Sentinel kinds for service errors.
var (
	// ErrNotStarted reports an operation on a service whose components
	// have not been built yet.
	ErrNotStarted = errors.New("service not started")
)
