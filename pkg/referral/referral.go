package referral

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidPlan is returned by NewPlan for malformed tier tables.
var ErrInvalidPlan = errors.New("referral: invalid plan")

// Tier grants a commission rate once a referrer reaches MinConversions.
type Tier struct {
	MinConversions int
	RateBps        int
}

// Plan is a commission schedule. Tiers are ordered by ascending
// MinConversions; the highest tier reached applies.
type Plan struct {
	Tiers     []Tier
	MinPayout int64
}

// DefaultPlan is the production commission schedule: 10% base, 12.5% from 10
// conversions, 15% from 50, paid out once at least 5,000.00 has accrued.
func DefaultPlan() Plan {
	return Plan{
		Tiers: []Tier{
			{MinConversions: 0, RateBps: 1000},
			{MinConversions: 10, RateBps: 1250},
			{MinConversions: 50, RateBps: 1500},
		},
		MinPayout: 500_000,
	}
}

// NewPlan validates and returns a custom plan. The first tier must start at
// zero conversions so every referrer has a rate.
func NewPlan(tiers []Tier, minPayout int64) (Plan, error) {
	if len(tiers) == 0 {
		return Plan{}, fmt.Errorf("%w: no tiers", ErrInvalidPlan)
	}
	if tiers[0].MinConversions != 0 {
		return Plan{}, fmt.Errorf("%w: first tier must start at zero conversions", ErrInvalidPlan)
	}
	if minPayout < 0 {
		return Plan{}, fmt.Errorf("%w: negative minimum payout", ErrInvalidPlan)
	}
	prev := -1
	for _, tier := range tiers {
		if tier.RateBps < 0 || tier.RateBps > 10000 {
			return Plan{}, fmt.Errorf("%w: rate %d out of range", ErrInvalidPlan, tier.RateBps)
		}
		if tier.MinConversions <= prev {
			return Plan{}, fmt.Errorf("%w: tiers must be strictly ascending", ErrInvalidPlan)
		}
		prev = tier.MinConversions
	}
	return Plan{Tiers: tiers, MinPayout: minPayout}, nil
}

// Rate returns the basis-point rate for a referrer with the given number of
// completed conversions.
func (p Plan) Rate(conversions int) int {
	rate := 0
	for _, tier := range p.Tiers {
		if conversions < tier.MinConversions {
			break
		}
		rate = tier.RateBps
	}
	return rate
}

// Commission returns the commission earned on a payment amount for a referrer
// at the given conversion count, rounded half up.
func (p Plan) Commission(amount int64, conversions int) int64 {
	if amount <= 0 {
		return 0
	}
	return (amount*int64(p.Rate(conversions)) + 5000) / 10000
}

// Payable reports whether an accrued balance has reached the payout threshold.
func (p Plan) Payable(accrued int64) bool {
	return accrued >= p.MinPayout
}

// NewCode generates an 8-character, uppercase, URL-safe referral code.
func NewCode() string {
	id := uuid.New()
	return strings.ToUpper(id.String()[:8])
}
