package ratelimiter

import "errors"

var (
	// ErrInvalidConfig is returned by New for non-positive bucket parameters.
	ErrInvalidConfig = errors.New("ratelimiter: invalid config")

	// ErrStoreFailure wraps backend errors from the Store.
	ErrStoreFailure = errors.New("ratelimiter: store failure")
)
