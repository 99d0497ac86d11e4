package invoice

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Status tracks an invoice through its payment lifecycle.
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
	StatusPaid  Status = "paid"
)

// LineItem is a single billed position. UnitPrice is in kobo.
type LineItem struct {
	Description string `json:"description"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Amount returns the line total in kobo.
func (li LineItem) Amount() int64 {
	return li.Quantity * li.UnitPrice
}

// Invoice is a customer invoice. All monetary fields are in kobo.
type Invoice struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	Number        string // Number is unique per account, e.g. INV-000042.
	CustomerName  string
	CustomerEmail string
	Items         []LineItem
	Subtotal      int64
	VAT           int64
	Total         int64
	Status        Status
	DueAt         time.Time
	PaidAt        *time.Time
	CreatedAt     time.Time
}

var ngnPrinter = message.NewPrinter(language.English)

// FormatNGN renders a kobo amount as a grouped naira string, e.g.
// "₦1,234,567.89". Negative amounts keep the sign before the currency mark.
func FormatNGN(kobo int64) string {
	sign := ""
	if kobo < 0 {
		sign = "-"
		kobo = -kobo
	}
	return ngnPrinter.Sprintf("%s₦%d.%02d", sign, kobo/100, kobo%100)
}

// DisplayTotal is the invoice total formatted for documents and email.
func (inv *Invoice) DisplayTotal() string {
	return FormatNGN(inv.Total)
}
