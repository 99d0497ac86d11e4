package filing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store persists filings.
type Store interface {
	// Create inserts a filing. It fails with ErrPeriodOverlap when the
	// account already has a filing of the same type whose period intersects.
	Create(ctx context.Context, f *Filing) error
	GetByID(ctx context.Context, accountID, filingID uuid.UUID) (*Filing, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Filing, error)
	// SetStatus moves a filing from one status to another, stamping the
	// matching timestamp and the rejection reason. It fails with ErrNotFound
	// when the filing does not exist or is not currently in the from status.
	SetStatus(ctx context.Context, accountID, filingID uuid.UUID, from, to Status, reason string, at time.Time) (*Filing, error)
}
