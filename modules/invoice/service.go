package invoice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/qr"
	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// Indexer is the full-text index the service mirrors invoices into.
// *search.Index satisfies it.
type Indexer interface {
	Put(ctx context.Context, id string, doc any) error
	Delete(ctx context.Context, id string) error
	Match(ctx context.Context, field, value string, limit int) ([]json.RawMessage, error)
}

type Config struct {
	PaymentBaseURL string `env:"PAYMENT_BASE_URL" envDefault:"https://pay.filingdesk.app"`
}

// Service implements invoice operations over a Store, with optional
// full-text indexing.
type Service struct {
	store      Store
	rates      taxrate.Schedule
	index      Indexer
	log        *slog.Logger
	payBaseURL string
}

// NewService wires the invoice service. index may be nil when search is not
// deployed; indexing is best effort and never fails an operation either way.
func NewService(cfg Config, store Store, rates taxrate.Schedule, index Indexer, log *slog.Logger) *Service {
	return &Service{
		store:      store,
		rates:      rates,
		index:      index,
		log:        log,
		payBaseURL: strings.TrimSuffix(cfg.PaymentBaseURL, "/"),
	}
}

// CreateParams is the invoice creation request after transport decoding.
type CreateParams struct {
	AccountID     uuid.UUID
	CustomerName  string
	CustomerEmail string
	Items         []LineItem
	DueAt         time.Time
}

// Create validates the line items, prices the invoice, and persists it in
// draft status. The store assigns the per-account sequence number.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Invoice, error) {
	if params.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidInput)
	}
	if strings.TrimSpace(params.CustomerName) == "" {
		return nil, fmt.Errorf("%w: missing customer name", ErrInvalidInput)
	}
	if len(params.Items) == 0 {
		return nil, ErrNoLineItems
	}
	var subtotal int64
	for i, item := range params.Items {
		if strings.TrimSpace(item.Description) == "" {
			return nil, fmt.Errorf("%w: line %d has no description", ErrInvalidInput, i+1)
		}
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line %d quantity must be positive", ErrInvalidInput, i+1)
		}
		if item.UnitPrice < 0 {
			return nil, fmt.Errorf("%w: line %d unit price is negative", ErrInvalidInput, i+1)
		}
		subtotal += item.Amount()
	}

	vat := s.rates.VAT(subtotal)
	inv := &Invoice{
		ID:            uuid.New(),
		AccountID:     params.AccountID,
		CustomerName:  strings.TrimSpace(params.CustomerName),
		CustomerEmail: strings.TrimSpace(params.CustomerEmail),
		Items:         params.Items,
		Subtotal:      subtotal,
		VAT:           vat,
		Total:         subtotal + vat,
		Status:        StatusDraft,
		DueAt:         params.DueAt,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.store.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.reindex(ctx, inv)
	return inv, nil
}

// Get fetches one invoice scoped to its owning account.
func (s *Service) Get(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error) {
	return s.store.GetByID(ctx, accountID, invoiceID)
}

// List returns all invoices of an account, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Invoice, error) {
	return s.store.ListByAccount(ctx, accountID)
}

// Send moves a draft invoice to sent.
func (s *Service) Send(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error) {
	inv, err := s.store.SetStatus(ctx, accountID, invoiceID, StatusDraft, StatusSent)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, inv)
	return inv, nil
}

// MarkPaid settles an invoice. Draft invoices can be settled directly when
// payment arrives before the invoice is sent.
func (s *Service) MarkPaid(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error) {
	current, err := s.store.GetByID(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	if current.Status == StatusPaid {
		return nil, ErrAlreadyPaid
	}
	inv, err := s.store.SetStatus(ctx, accountID, invoiceID, current.Status, StatusPaid)
	if err != nil {
		return nil, err
	}
	s.reindex(ctx, inv)
	return inv, nil
}

// PaymentQR renders a QR code pointing at the hosted payment page for an
// invoice. size is the PNG edge in pixels; zero picks the default.
func (s *Service) PaymentQR(ctx context.Context, accountID, invoiceID uuid.UUID, size int) ([]byte, error) {
	inv, err := s.store.GetByID(ctx, accountID, invoiceID)
	if err != nil {
		return nil, err
	}
	png, err := qr.PNG(s.payBaseURL+"/i/"+inv.ID.String(), size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQRGeneration, err)
	}
	return png, nil
}

// SubtotalForPeriod sums pre-VAT subtotals of non-draft invoices created in
// [from, to). The filing module uses it to price VAT returns.
func (s *Service) SubtotalForPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int64, error) {
	return s.store.SubtotalForPeriod(ctx, accountID, from, to)
}

// SearchHit is a search result projection of an indexed invoice.
type SearchHit struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Number       string `json:"number"`
	CustomerName string `json:"customer_name"`
	Total        int64  `json:"total"`
	Status       string `json:"status"`
}

// Search matches invoices by customer name. Results may lag writes by the
// index refresh interval.
func (s *Service) Search(ctx context.Context, customerName string, limit int) ([]SearchHit, error) {
	if s.index == nil {
		return nil, nil
	}
	raw, err := s.index.Match(ctx, "customer_name", customerName, limit)
	if err != nil {
		return nil, err
	}
	hits := make([]SearchHit, 0, len(raw))
	for _, doc := range raw {
		var hit SearchHit
		if err := json.Unmarshal(doc, &hit); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *Service) reindex(ctx context.Context, inv *Invoice) {
	if s.index == nil {
		return
	}
	doc := SearchHit{
		ID:           inv.ID.String(),
		AccountID:    inv.AccountID.String(),
		Number:       inv.Number,
		CustomerName: inv.CustomerName,
		Total:        inv.Total,
		Status:       string(inv.Status),
	}
	if err := s.index.Put(ctx, doc.ID, doc); err != nil {
		s.log.ErrorContext(ctx, "failed to index invoice", "invoice_id", doc.ID, "error", err)
	}
}
