package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore is the PostgreSQL-backed invoice store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a store over an established pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Create inserts the invoice and assigns its per-account sequence number in
// one transaction. The counter row is locked by the upsert, so concurrent
// creates for the same account serialize on it.
func (s *PgStore) Create(ctx context.Context, inv *Invoice) error {
	items, err := json.Marshal(inv.Items)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // no-op after commit

	var seq int64
	err = tx.QueryRow(ctx, `
		INSERT INTO invoice_counters (account_id, next_number)
		VALUES ($1, 2)
		ON CONFLICT (account_id)
		DO UPDATE SET next_number = invoice_counters.next_number + 1
		RETURNING next_number - 1`,
		inv.AccountID,
	).Scan(&seq)
	if err != nil {
		return err
	}
	inv.Number = fmt.Sprintf("INV-%06d", seq)

	_, err = tx.Exec(ctx, `
		INSERT INTO invoices (id, account_id, number, customer_name, customer_email, items, subtotal, vat, total, status, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		inv.ID, inv.AccountID, inv.Number, inv.CustomerName, inv.CustomerEmail, items,
		inv.Subtotal, inv.VAT, inv.Total, inv.Status, inv.DueAt, inv.CreatedAt,
	)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const invoiceColumns = `id, account_id, number, customer_name, customer_email, items, subtotal, vat, total, status, due_at, paid_at, created_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var (
		inv   Invoice
		items []byte
	)
	err := row.Scan(&inv.ID, &inv.AccountID, &inv.Number, &inv.CustomerName, &inv.CustomerEmail, &items,
		&inv.Subtotal, &inv.VAT, &inv.Total, &inv.Status, &inv.DueAt, &inv.PaidAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &inv.Items); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (s *PgStore) GetByID(ctx context.Context, accountID, invoiceID uuid.UUID) (*Invoice, error) {
	return scanInvoice(s.pool.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE account_id = $1 AND id = $2`,
		accountID, invoiceID))
}

func (s *PgStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Invoice, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE account_id = $1 ORDER BY created_at DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (s *PgStore) SetStatus(ctx context.Context, accountID, invoiceID uuid.UUID, from, to Status) (*Invoice, error) {
	var paidAt *time.Time
	if to == StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	return scanInvoice(s.pool.QueryRow(ctx, `
		UPDATE invoices SET status = $1, paid_at = COALESCE($2, paid_at)
		WHERE account_id = $3 AND id = $4 AND status = $5
		RETURNING `+invoiceColumns,
		to, paidAt, accountID, invoiceID, from,
	))
}

func (s *PgStore) SubtotalForPeriod(ctx context.Context, accountID uuid.UUID, from, to time.Time) (int64, error) {
	var subtotal int64
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(subtotal), 0)
		FROM invoices
		WHERE account_id = $1 AND status <> $2 AND created_at >= $3 AND created_at < $4`,
		accountID, StatusDraft, from, to,
	).Scan(&subtotal)
	return subtotal, err
}
