package expense

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// maxReceiptSize caps receipt uploads at 10 MiB.
const maxReceiptSize = 10 << 20

var receiptExtensions = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"application/pdf": "pdf",
}

// Uploader is the slice of object storage the service needs. *storage.Store
// satisfies it.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Service implements expense operations over a Store with receipt files in
// object storage.
type Service struct {
	store   Store
	rates   taxrate.Schedule
	objects Uploader
	log     *slog.Logger
}

// NewService wires the expense service. objects may be nil when receipt
// storage is not deployed; AttachReceipt then fails.
func NewService(store Store, rates taxrate.Schedule, objects Uploader, log *slog.Logger) *Service {
	return &Service{store: store, rates: rates, objects: objects, log: log}
}

// CreateParams is the expense creation request after transport decoding.
type CreateParams struct {
	AccountID   uuid.UUID
	Description string
	Category    taxrate.Category
	Amount      int64
	IncurredAt  time.Time
}

// Create validates the expense, computes the withholding due for its
// category, and persists it.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Expense, error) {
	if params.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidInput)
	}
	if strings.TrimSpace(params.Description) == "" {
		return nil, fmt.Errorf("%w: missing description", ErrInvalidInput)
	}
	if params.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if params.IncurredAt.IsZero() {
		return nil, fmt.Errorf("%w: missing incurred date", ErrInvalidInput)
	}

	wht, err := s.rates.WHT(params.Category, params.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	exp := &Expense{
		ID:          uuid.New(),
		AccountID:   params.AccountID,
		Description: strings.TrimSpace(params.Description),
		Category:    params.Category,
		Amount:      params.Amount,
		WHT:         wht,
		Net:         params.Amount - wht,
		IncurredAt:  params.IncurredAt,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.Create(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Get fetches one expense scoped to its owning account.
func (s *Service) Get(ctx context.Context, accountID, expenseID uuid.UUID) (*Expense, error) {
	return s.store.GetByID(ctx, accountID, expenseID)
}

// List returns all expenses of an account, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Expense, error) {
	return s.store.ListByAccount(ctx, accountID)
}

// AttachReceipt stores a receipt file and links it to the expense. A receipt
// attached over an existing one replaces it; the old object is removed best
// effort.
func (s *Service) AttachReceipt(ctx context.Context, accountID, expenseID uuid.UUID, contentType string, size int64, body io.Reader) (string, error) {
	ext, ok := receiptExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedReceipt, contentType)
	}
	if size > maxReceiptSize {
		return "", ErrReceiptTooLarge
	}

	exp, err := s.store.GetByID(ctx, accountID, expenseID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("receipts/%s/%s.%s", accountID, expenseID, ext)
	url, err := s.objects.Upload(ctx, key, contentType, io.LimitReader(body, maxReceiptSize))
	if err != nil {
		return "", err
	}
	if err := s.store.SetReceiptKey(ctx, accountID, expenseID, key); err != nil {
		return "", err
	}
	if exp.ReceiptKey != "" && exp.ReceiptKey != key {
		if err := s.objects.Delete(ctx, exp.ReceiptKey); err != nil {
			s.log.ErrorContext(ctx, "failed to remove replaced receipt", "key", exp.ReceiptKey, "error", err)
		}
	}
	return url, nil
}

// ReceiptURL returns the public URL of the attached receipt, or empty when
// none is attached.
func (s *Service) ReceiptURL(ctx context.Context, accountID, expenseID uuid.UUID) (string, error) {
	exp, err := s.store.GetByID(ctx, accountID, expenseID)
	if err != nil {
		return "", err
	}
	if exp.ReceiptKey == "" {
		return "", nil
	}
	return s.objects.URL(exp.ReceiptKey), nil
}

// TotalsByCategory sums gross expense amounts per withholding category for
// the period [from, to). The filing module uses it to price WHT returns.
func (s *Service) TotalsByCategory(ctx context.Context, accountID uuid.UUID, from, to time.Time) (map[taxrate.Category]int64, error) {
	return s.store.TotalsByCategory(ctx, accountID, from, to)
}
