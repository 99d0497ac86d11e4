package invoice

import "errors"

var (
	ErrNotFound     = errors.New("invoice not found")
	ErrInvalidInput = errors.New("invalid invoice input")
	ErrNoLineItems  = errors.New("invoice has no line items")
	ErrAlreadyPaid  = errors.New("invoice already paid")
	ErrQRGeneration = errors.New("failed to generate payment QR code")
)
