package filing

import (
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// Type identifies which tax a filing covers.
type Type string

const (
	TypeVAT Type = "vat"
	TypeWHT Type = "wht"
	TypePIT Type = "pit"
)

// Status tracks a filing through its review lifecycle.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// transitions is the authoritative status graph. Approved and rejected are
// terminal.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
}

// canTransition reports whether from may move to to.
func canTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Filing is one periodic tax return. Amount is the tax due in kobo;
// Base is the gross amount the tax was computed from.
type Filing struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Type        Type
	PeriodStart time.Time
	PeriodEnd   time.Time
	Base        int64
	Amount      int64
	// Breakdown carries per-category amounts for WHT filings; nil otherwise.
	Breakdown   map[taxrate.Category]int64
	Status      Status
	Reason      string // Reason is set when the filing is rejected.
	SubmittedAt *time.Time
	DecidedAt   *time.Time
	CreatedAt   time.Time
}
