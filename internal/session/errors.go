package session

import "errors"

// Sentinel kinds for session errors.
var (
	// ErrSessionLimit reports that the live-session cap is reached. The API
	// maps it to 429.
	ErrSessionLimit = errors.New("session limit reached")
	// ErrRegistryClosed reports an Open after shutdown began.
	ErrRegistryClosed = errors.New("session registry closed")
)
