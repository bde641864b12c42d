package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrBadRequest      = errors.New("bad request")
	ErrBackpressure    = errors.New("backpressure")
	ErrSessionNotFound = errors.New("session not found")
	ErrBatchTooLarge   = errors.New("suggestion batch too large")
)
