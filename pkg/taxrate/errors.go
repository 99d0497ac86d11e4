package taxrate

import "errors"

var (
	// ErrUnknownCategory is returned by WHT for categories missing from the schedule.
	ErrUnknownCategory = errors.New("taxrate: unknown withholding category")

	// ErrInvalidSchedule is returned when a loaded schedule fails validation.
	ErrInvalidSchedule = errors.New("taxrate: invalid schedule")
)
