package filing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/filingdesk/filingdesk/pkg/email"
	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// InvoiceTotals supplies the invoiced base for VAT filings.
// *invoice.Service satisfies it.
type InvoiceTotals interface {
	SubtotalForPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int64, error)
}

// ExpenseTotals supplies per-category expense bases for WHT filings.
// *expense.Service satisfies it.
type ExpenseTotals interface {
	TotalsByCategory(ctx context.Context, accountID uuid.UUID, from, to time.Time) (map[taxrate.Category]int64, error)
}

// Contact resolves the notification address for an account.
type Contact func(ctx context.Context, accountID uuid.UUID) (string, error)

// Service implements filing operations over a Store.
type Service struct {
	store    Store
	rates    taxrate.Schedule
	invoices InvoiceTotals
	expenses ExpenseTotals
	contact  Contact
	sender   email.Sender
	log      *slog.Logger
}

// NewService wires the filing service. contact and sender drive status
// notifications; notification failures are logged, never returned.
func NewService(store Store, rates taxrate.Schedule, invoices InvoiceTotals, expenses ExpenseTotals, contact Contact, sender email.Sender, log *slog.Logger) *Service {
	return &Service{
		store:    store,
		rates:    rates,
		invoices: invoices,
		expenses: expenses,
		contact:  contact,
		sender:   sender,
		log:      log,
	}
}

// DraftParams is the filing creation request. DeclaredIncome is the annual
// income for PIT filings, in kobo; VAT and WHT filings ignore it.
type DraftParams struct {
	AccountID      uuid.UUID
	Type           Type
	PeriodStart    time.Time
	PeriodEnd      time.Time
	DeclaredIncome int64
}

// Draft prices a return for the period and persists it in draft status. VAT
// filings are priced from invoiced subtotals, WHT filings from expense
// category totals, PIT filings from the declared income.
func (s *Service) Draft(ctx context.Context, params DraftParams) (*Filing, error) {
	if params.AccountID == uuid.Nil {
		return nil, fmt.Errorf("%w: missing account id", ErrInvalidInput)
	}
	if params.PeriodStart.IsZero() || params.PeriodEnd.IsZero() || !params.PeriodEnd.After(params.PeriodStart) {
		return nil, fmt.Errorf("%w: period end must follow period start", ErrInvalidInput)
	}

	f := &Filing{
		ID:          uuid.New(),
		AccountID:   params.AccountID,
		Type:        params.Type,
		PeriodStart: params.PeriodStart,
		PeriodEnd:   params.PeriodEnd,
		Status:      StatusDraft,
		CreatedAt:   time.Now().UTC(),
	}

	switch params.Type {
	case TypeVAT:
		base, err := s.invoices.SubtotalForPeriod(ctx, params.AccountID, params.PeriodStart, params.PeriodEnd)
		if err != nil {
			return nil, err
		}
		f.Base = base
		f.Amount = s.rates.VAT(base)
	case TypeWHT:
		totals, err := s.expenses.TotalsByCategory(ctx, params.AccountID, params.PeriodStart, params.PeriodEnd)
		if err != nil {
			return nil, err
		}
		f.Breakdown = make(map[taxrate.Category]int64, len(totals))
		for category, base := range totals {
			wht, err := s.rates.WHT(category, base)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
			}
			f.Base += base
			f.Amount += wht
			f.Breakdown[category] = wht
		}
	case TypePIT:
		if params.DeclaredIncome <= 0 {
			return nil, fmt.Errorf("%w: declared income must be positive", ErrInvalidInput)
		}
		f.Base = params.DeclaredIncome
		f.Amount = s.rates.PIT(params.DeclaredIncome)
	default:
		return nil, fmt.Errorf("%w: unknown filing type %q", ErrInvalidInput, params.Type)
	}

	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Get fetches one filing scoped to its owning account.
func (s *Service) Get(ctx context.Context, accountID, filingID uuid.UUID) (*Filing, error) {
	return s.store.GetByID(ctx, accountID, filingID)
}

// List returns all filings of an account, newest first.
func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]*Filing, error) {
	return s.store.ListByAccount(ctx, accountID)
}

// Submit hands a draft filing to the authority.
func (s *Service) Submit(ctx context.Context, accountID, filingID uuid.UUID) (*Filing, error) {
	f, err := s.transition(ctx, accountID, filingID, StatusSubmitted, "")
	if err != nil {
		return nil, err
	}
	s.notify(ctx, f, fmt.Sprintf("Your %s return for %s was submitted.", typeLabel(f.Type), periodLabel(f)))
	return f, nil
}

// Approve records the authority accepting a submitted filing.
func (s *Service) Approve(ctx context.Context, accountID, filingID uuid.UUID) (*Filing, error) {
	f, err := s.transition(ctx, accountID, filingID, StatusApproved, "")
	if err != nil {
		return nil, err
	}
	s.notify(ctx, f, fmt.Sprintf("Your %s return for %s was approved.", typeLabel(f.Type), periodLabel(f)))
	return f, nil
}

// Reject records the authority declining a submitted filing.
func (s *Service) Reject(ctx context.Context, accountID, filingID uuid.UUID, reason string) (*Filing, error) {
	f, err := s.transition(ctx, accountID, filingID, StatusRejected, reason)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, f, fmt.Sprintf("Your %s return for %s was rejected: %s", typeLabel(f.Type), periodLabel(f), reason))
	return f, nil
}

func (s *Service) transition(ctx context.Context, accountID, filingID uuid.UUID, to Status, reason string) (*Filing, error) {
	current, err := s.store.GetByID(ctx, accountID, filingID)
	if err != nil {
		return nil, err
	}
	if !canTransition(current.Status, to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}
	return s.store.SetStatus(ctx, accountID, filingID, current.Status, to, reason, time.Now().UTC())
}

func (s *Service) notify(ctx context.Context, f *Filing, body string) {
	addr, err := s.contact(ctx, f.AccountID)
	if err != nil {
		s.log.ErrorContext(ctx, "failed to resolve filing contact", "account_id", f.AccountID, "error", err)
		return
	}
	err = s.sender.Send(ctx, email.Message{
		To:       addr,
		Subject:  fmt.Sprintf("FilingDesk: %s return %s", typeLabel(f.Type), f.Status),
		BodyHTML: "<p>" + body + "</p>",
		Tag:      "filing-status",
	})
	if err != nil {
		s.log.ErrorContext(ctx, "failed to send filing notification", "filing_id", f.ID, "error", err)
	}
}

func typeLabel(t Type) string {
	switch t {
	case TypeVAT:
		return "VAT"
	case TypeWHT:
		return "WHT"
	case TypePIT:
		return "PIT"
	}
	return string(t)
}

func periodLabel(f *Filing) string {
	return f.PeriodStart.Format("2006-01-02") + " to " + f.PeriodEnd.Format("2006-01-02")
}

// sortedCategories is used by transports that render the WHT breakdown in a
// stable order.
func sortedCategories(breakdown map[taxrate.Category]int64) []taxrate.Category {
	categories := make([]taxrate.Category, 0, len(breakdown))
	for category := range breakdown {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })
	return categories
}
