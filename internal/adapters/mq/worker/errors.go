package worker

import "errors"

// Sentinel kinds for delivery errors.
var (
	// ErrUnknownKind reports an outbound item whose kind maps to no emitter
	// call. Such items are dropped.
	ErrUnknownKind = errors.New("unknown outbound kind")
)
