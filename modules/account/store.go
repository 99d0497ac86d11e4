package account

import (
	"context"

	"github.com/google/uuid"
)

// Store persists accounts. Implementations return the package sentinel
// errors so the service layer stays backend-agnostic.
type Store interface {
	// Create inserts a new account. Returns ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, acct *Account) error

	// GetByEmail returns the account for a normalized email, or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetByID returns the account, or ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// GetByReferralCode returns the account owning the code, or ErrNotFound.
	GetByReferralCode(ctx context.Context, code string) (*Account, error)

	// SetVerificationToken stores a pending email verification token.
	SetVerificationToken(ctx context.Context, accountID uuid.UUID, token string) error

	// ConsumeVerificationToken marks the owning account verified and
	// invalidates the token. Returns ErrVerificationInvalid for unknown or
	// already-consumed tokens.
	ConsumeVerificationToken(ctx context.Context, token string) (uuid.UUID, error)
}

// ReferralStore persists accrued commission events.
type ReferralStore interface {
	// Record appends one conversion event.
	Record(ctx context.Context, ref Referral) error

	// Summary returns the number of conversions and total accrued commission
	// for a referral code. A code with no events yields zeros.
	Summary(ctx context.Context, code string) (conversions int, accrued int64, err error)
}
