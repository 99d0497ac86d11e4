package returnurl

import "errors"

var (
	// ErrMissingSecret is returned by New when the signing secret is empty.
	ErrMissingSecret = errors.New("returnurl: missing signing secret")

	// ErrEmptyAllowList is returned by New when no destination paths are allowed.
	ErrEmptyAllowList = errors.New("returnurl: empty path allow-list")

	// ErrPathNotAllowed is returned by Issue for paths outside the allow-list.
	ErrPathNotAllowed = errors.New("returnurl: path not allow-listed")

	// ErrInvalidToken is the only error Validate returns. Malformed, forged,
	// expired and disallowed tokens are deliberately indistinguishable.
	ErrInvalidToken = errors.New("returnurl: invalid token")
)
