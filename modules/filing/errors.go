package filing

import "errors"

var (
	ErrNotFound          = errors.New("filing not found")
	ErrInvalidInput      = errors.New("invalid filing input")
	ErrInvalidTransition = errors.New("invalid filing status transition")
	ErrPeriodOverlap     = errors.New("filing period overlaps an existing filing")
)
