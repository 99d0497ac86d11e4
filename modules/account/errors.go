package account

import "errors"

var (
	// ErrEmailTaken is returned when an account with the email already exists.
	ErrEmailTaken = errors.New("account: email already registered")

	// ErrInvalidCredentials is returned for unknown emails and wrong passwords
	// alike, so sign-in cannot be used to probe registered addresses.
	ErrInvalidCredentials = errors.New("account: invalid credentials")

	// ErrNotFound is returned when an account does not exist.
	ErrNotFound = errors.New("account: not found")

	// ErrInvalidInput is returned for malformed sign-up parameters.
	ErrInvalidInput = errors.New("account: invalid input")

	// ErrVerificationInvalid is returned for unknown or consumed verification tokens.
	ErrVerificationInvalid = errors.New("account: invalid verification token")

	// ErrUnknownReferralCode is returned when recording a conversion for a
	// code no account owns.
	ErrUnknownReferralCode = errors.New("account: unknown referral code")
)
