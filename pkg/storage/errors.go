package storage

import "errors"

var (
	// ErrInvalidConfig is returned when bucket or region are missing.
	ErrInvalidConfig = errors.New("storage: invalid config")

	// ErrEmptyKey is returned for operations on an empty object key.
	ErrEmptyKey = errors.New("storage: empty object key")

	// ErrUploadFailed wraps provider errors during upload.
	ErrUploadFailed = errors.New("storage: upload failed")

	// ErrDeleteFailed wraps provider errors during deletion.
	ErrDeleteFailed = errors.New("storage: delete failed")
)
