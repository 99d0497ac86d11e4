package routegate

import "errors"

var (
	// ErrUnknownAccountType is returned for account types missing from the table.
	ErrUnknownAccountType = errors.New("routegate: unknown account type")

	// ErrSegmentDenied is returned when the account type may not enter the segment.
	ErrSegmentDenied = errors.New("routegate: segment denied for account type")

	// ErrNoAccountInContext is returned when the request context carries no account type.
	ErrNoAccountInContext = errors.New("routegate: no account type in context")
)
