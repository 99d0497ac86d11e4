package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/routegate"
)

// Account is one tenant account.
type Account struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  []byte
	Type          routegate.AccountType
	EmailVerified bool
	ReferralCode  string // ReferralCode is this account's own code to share.
	ReferredBy    string // ReferredBy is the code used at sign-up, empty if none.
	CreatedAt     time.Time
}

// Referral is one accrued commission event for a referrer.
type Referral struct {
	ID         uuid.UUID
	Code       string
	ReferredID uuid.UUID
	Commission int64 // Commission in kobo.
	CreatedAt  time.Time
}

// ReferralSummary aggregates a referrer's standing.
type ReferralSummary struct {
	Code        string
	Conversions int
	Accrued     int64
	Payable     bool
}
