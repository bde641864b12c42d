package plancache

import "errors"

// Sentinel kinds for plan cache errors.
var (
	// ErrCreateCache reports that the underlying LRU could not be built.
	ErrCreateCache = errors.New("create plan cache")
)
