package upstream

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnavailable wraps transport failures and open-breaker rejections.
	ErrUnavailable = errors.New("upstream unavailable")

	// ErrUnexpectedStatus marks non-2xx responses that are not "no plan".
	ErrUnexpectedStatus = errors.New("unexpected upstream status")

	// ErrDecodeResponse marks bodies that could not be parsed at all.
	ErrDecodeResponse = errors.New("decode upstream response failed")
)
