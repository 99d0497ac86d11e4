package invoice_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingdesk/filingdesk/modules/invoice"
	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

type memStore struct {
	mu       sync.Mutex
	byID     map[uuid.UUID]*invoice.Invoice
	counters map[uuid.UUID]int64
}

func newMemStore() *memStore {
	return &memStore{
		byID:     make(map[uuid.UUID]*invoice.Invoice),
		counters: make(map[uuid.UUID]int64),
	}
}

func (s *memStore) Create(_ context.Context, inv *invoice.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[inv.AccountID]++
	inv.Number = fmt.Sprintf("INV-%06d", s.counters[inv.AccountID])
	cp := *inv
	s.byID[inv.ID] = &cp
	return nil
}

func (s *memStore) GetByID(_ context.Context, accountID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.byID[invoiceID]
	if !ok || inv.AccountID != accountID {
		return nil, invoice.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*invoice.Invoice
	for _, inv := range s.byID {
		if inv.AccountID == accountID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) SetStatus(_ context.Context, accountID, invoiceID uuid.UUID, from, to invoice.Status) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.byID[invoiceID]
	if !ok || inv.AccountID != accountID || inv.Status != from {
		return nil, invoice.ErrNotFound
	}
	inv.Status = to
	if to == invoice.StatusPaid {
		now := time.Now().UTC()
		inv.PaidAt = &now
	}
	cp := *inv
	return &cp, nil
}

func (s *memStore) SubtotalForPeriod(_ context.Context, accountID uuid.UUID, from, to time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var subtotal int64
	for _, inv := range s.byID {
		if inv.AccountID == accountID && inv.Status != invoice.StatusDraft &&
			!inv.CreatedAt.Before(from) && inv.CreatedAt.Before(to) {
			subtotal += inv.Subtotal
		}
	}
	return subtotal, nil
}

type memIndex struct {
	mu   sync.Mutex
	docs map[string]json.RawMessage
}

func newMemIndex() *memIndex {
	return &memIndex{docs: make(map[string]json.RawMessage)}
}

func (i *memIndex) Put(_ context.Context, id string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[id] = raw
	return nil
}

func (i *memIndex) Delete(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.docs, id)
	return nil
}

func (i *memIndex) Match(_ context.Context, field, value string, limit int) ([]json.RawMessage, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	var hits []json.RawMessage
	for _, raw := range i.docs {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		if s, _ := doc[field].(string); s == value && len(hits) < limit {
			hits = append(hits, raw)
		}
	}
	return hits, nil
}

func newService(t *testing.T) (*invoice.Service, *memStore, *memIndex) {
	t.Helper()
	store := newMemStore()
	index := newMemIndex()
	svc := invoice.NewService(
		invoice.Config{PaymentBaseURL: "https://pay.filingdesk.test"},
		store, taxrate.Default(), index,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return svc, store, index
}

func createInvoice(t *testing.T, svc *invoice.Service, accountID uuid.UUID) *invoice.Invoice {
	t.Helper()
	inv, err := svc.Create(t.Context(), invoice.CreateParams{
		AccountID:    accountID,
		CustomerName: "Acme Ltd",
		Items: []invoice.LineItem{
			{Description: "Consulting", Quantity: 10, UnitPrice: 50_000_00},
			{Description: "Travel", Quantity: 1, UnitPrice: 25_000_00},
		},
		DueAt: time.Now().Add(14 * 24 * time.Hour),
	})
	require.NoError(t, err)
	return inv
}

func TestCreate(t *testing.T) {
	t.Parallel()

	t.Run("prices and numbers the invoice", func(t *testing.T) {
		t.Parallel()
		svc, _, index := newService(t)
		accountID := uuid.New()

		inv := createInvoice(t, svc, accountID)
		// 10*50,000.00 + 25,000.00 = 525,000.00; VAT 7.5% = 39,375.00.
		assert.Equal(t, int64(525_000_00), inv.Subtotal)
		assert.Equal(t, int64(39_375_00), inv.VAT)
		assert.Equal(t, int64(564_375_00), inv.Total)
		assert.Equal(t, "INV-000001", inv.Number)
		assert.Equal(t, invoice.StatusDraft, inv.Status)
		assert.Equal(t, "₦564,375.00", inv.DisplayTotal())

		second := createInvoice(t, svc, accountID)
		assert.Equal(t, "INV-000002", second.Number)

		// A different account starts its own sequence.
		other := createInvoice(t, svc, uuid.New())
		assert.Equal(t, "INV-000001", other.Number)

		assert.Len(t, index.docs, 3)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newService(t)
		due := time.Now().Add(24 * time.Hour)

		cases := []struct {
			name   string
			params invoice.CreateParams
			want   error
		}{
			{
				name:   "missing account",
				params: invoice.CreateParams{CustomerName: "Acme", Items: []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 100}}, DueAt: due},
				want:   invoice.ErrInvalidInput,
			},
			{
				name:   "missing customer",
				params: invoice.CreateParams{AccountID: uuid.New(), Items: []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: 100}}, DueAt: due},
				want:   invoice.ErrInvalidInput,
			},
			{
				name:   "no items",
				params: invoice.CreateParams{AccountID: uuid.New(), CustomerName: "Acme", DueAt: due},
				want:   invoice.ErrNoLineItems,
			},
			{
				name:   "zero quantity",
				params: invoice.CreateParams{AccountID: uuid.New(), CustomerName: "Acme", Items: []invoice.LineItem{{Description: "x", Quantity: 0, UnitPrice: 100}}, DueAt: due},
				want:   invoice.ErrInvalidInput,
			},
			{
				name:   "negative price",
				params: invoice.CreateParams{AccountID: uuid.New(), CustomerName: "Acme", Items: []invoice.LineItem{{Description: "x", Quantity: 1, UnitPrice: -1}}, DueAt: due},
				want:   invoice.ErrInvalidInput,
			},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(t.Context(), tc.params)
				require.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestLifecycle(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	accountID := uuid.New()
	inv := createInvoice(t, svc, accountID)

	sent, err := svc.Send(t.Context(), accountID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, sent.Status)

	// Sending twice fails: the invoice is no longer a draft.
	_, err = svc.Send(t.Context(), accountID, inv.ID)
	require.ErrorIs(t, err, invoice.ErrNotFound)

	paid, err := svc.MarkPaid(t.Context(), accountID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	_, err = svc.MarkPaid(t.Context(), accountID, inv.ID)
	require.ErrorIs(t, err, invoice.ErrAlreadyPaid)
}

func TestMarkPaidFromDraft(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	accountID := uuid.New()
	inv := createInvoice(t, svc, accountID)

	paid, err := svc.MarkPaid(t.Context(), accountID, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status)
}

func TestAccountScoping(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	inv := createInvoice(t, svc, uuid.New())

	_, err := svc.Get(t.Context(), uuid.New(), inv.ID)
	require.ErrorIs(t, err, invoice.ErrNotFound)
	_, err = svc.MarkPaid(t.Context(), uuid.New(), inv.ID)
	require.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestPaymentQR(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	accountID := uuid.New()
	inv := createInvoice(t, svc, accountID)

	png, err := svc.PaymentQR(t.Context(), accountID, inv.ID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	_, err = svc.PaymentQR(t.Context(), accountID, uuid.New(), 0)
	require.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	accountID := uuid.New()
	inv := createInvoice(t, svc, accountID)

	hits, err := svc.Search(t.Context(), "Acme Ltd", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, inv.ID.String(), hits[0].ID)
	assert.Equal(t, inv.Number, hits[0].Number)
	assert.Equal(t, inv.Total, hits[0].Total)

	hits, err = svc.Search(t.Context(), "Nobody Inc", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSubtotalForPeriod(t *testing.T) {
	t.Parallel()
	svc, _, _ := newService(t)
	accountID := uuid.New()

	first := createInvoice(t, svc, accountID)
	createInvoice(t, svc, accountID) // stays draft, not counted
	_, err := svc.Send(t.Context(), accountID, first.ID)
	require.NoError(t, err)

	from := time.Now().Add(-time.Hour)
	to := time.Now().Add(time.Hour)
	subtotal, err := svc.SubtotalForPeriod(t.Context(), accountID, from, to)
	require.NoError(t, err)
	assert.Equal(t, first.Subtotal, subtotal)
}

func TestFormatNGN(t *testing.T) {
	t.Parallel()
	cases := []struct {
		kobo int64
		want string
	}{
		{0, "₦0.00"},
		{5, "₦0.05"},
		{1_234_567_89, "₦1,234,567.89"},
		{-250_00, "-₦250.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, invoice.FormatNGN(tc.kobo))
	}
}
