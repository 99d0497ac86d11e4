package expense

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// Store persists expenses.
type Store interface {
	Create(ctx context.Context, exp *Expense) error
	GetByID(ctx context.Context, accountID, expenseID uuid.UUID) (*Expense, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Expense, error)
	SetReceiptKey(ctx context.Context, accountID, expenseID uuid.UUID, key string) error
	// TotalsByCategory sums gross amounts per withholding category for
	// expenses incurred in [from, to).
	TotalsByCategory(ctx context.Context, accountID uuid.UUID, from, to time.Time) (map[taxrate.Category]int64, error)
}
