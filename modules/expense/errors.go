package expense

import "errors"

var (
	ErrNotFound           = errors.New("expense not found")
	ErrInvalidInput       = errors.New("invalid expense input")
	ErrReceiptTooLarge    = errors.New("receipt exceeds size limit")
	ErrUnsupportedReceipt = errors.New("unsupported receipt content type")
)
