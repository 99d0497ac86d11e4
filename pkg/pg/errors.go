package pg

import "errors"

var (
	// ErrInvalidConnString is returned when the connection string cannot be parsed.
	ErrInvalidConnString = errors.New("pg: invalid connection string")

	// ErrConnectFailed is returned when all connection attempts are exhausted.
	ErrConnectFailed = errors.New("pg: failed to connect")

	// ErrMigrateFailed wraps any failure while applying schema migrations.
	ErrMigrateFailed = errors.New("pg: failed to apply migrations")

	// ErrHealthcheckFailed is returned by the healthcheck closure on ping failure.
	ErrHealthcheckFailed = errors.New("pg: healthcheck failed")
)
