package expense

import (
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// Expense is a deductible business expense. Amount is the gross payment in
// kobo; WHT is the withholding due for the payment category and Net is the
// amount actually paid out after withholding.
type Expense struct {
	ID          uuid.UUID
	AccountID   uuid.UUID
	Description string
	Category    taxrate.Category
	Amount      int64
	WHT         int64
	Net         int64
	ReceiptKey  string // ReceiptKey is the object storage key, empty until a receipt is attached.
	IncurredAt  time.Time
	CreatedAt   time.Time
}
