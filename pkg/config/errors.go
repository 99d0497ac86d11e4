package config

import "errors"

var (
	// ErrNilPointer is returned when a nil destination is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")

	// ErrParsing is returned when the environment cannot be parsed into the struct.
	ErrParsing = errors.New("config: failed to parse environment")
)
