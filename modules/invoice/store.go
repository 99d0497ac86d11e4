package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists invoices. Create assigns the per-account sequence number
// atomically; two concurrent creates for the same account never collide.
type Store interface {
	Create(ctx context.Context, inv *Invoice) error
	GetByID(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Invoice, error)
	// SetStatus moves an invoice from one status to another and records the
	// payment time when to is StatusPaid. It fails with ErrNotFound when the
	// invoice does not exist or is not currently in the from status.
	SetStatus(ctx context.Context, accountID, invoiceID uuid.UUID, from, to Status) (*Invoice, error)
	// SubtotalForPeriod sums pre-VAT subtotals of non-draft invoices created
	// in [from, to).
	SubtotalForPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int64, error)
}
