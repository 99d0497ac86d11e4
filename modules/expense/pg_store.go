package expense

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filingdesk/filingdesk/pkg/taxrate"
)

// PgStore is the PostgreSQL-backed expense store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a store over an established pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Create(ctx context.Context, exp *Expense) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO expenses (id, account_id, description, category, amount, wht, net, receipt_key, incurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		exp.ID, exp.AccountID, exp.Description, exp.Category, exp.Amount, exp.WHT, exp.Net, exp.ReceiptKey, exp.IncurredAt, exp.CreatedAt,
	)
	return err
}

const expenseColumns = `id, account_id, description, category, amount, wht, net, receipt_key, incurred_at, created_at`

func scanExpense(row pgx.Row) (*Expense, error) {
	var exp Expense
	err := row.Scan(&exp.ID, &exp.AccountID, &exp.Description, &exp.Category, &exp.Amount, &exp.WHT, &exp.Net, &exp.ReceiptKey, &exp.IncurredAt, &exp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exp, nil
}

func (s *PgStore) GetByID(ctx context.Context, accountID, expenseID uuid.UUID) (*Expense, error) {
	return scanExpense(s.pool.QueryRow(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE account_id = $1 AND id = $2`,
		accountID, expenseID))
}

func (s *PgStore) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Expense, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE account_id = $1 ORDER BY created_at DESC`,
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func (s *PgStore) SetReceiptKey(ctx context.Context, accountID, expenseID uuid.UUID, key string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE expenses SET receipt_key = $1 WHERE account_id = $2 AND id = $3`,
		key, accountID, expenseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) TotalsByCategory(ctx context.Context, accountID uuid.UUID, from, to time.Time) (map[taxrate.Category]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT category, SUM(amount)
		FROM expenses
		WHERE account_id = $1 AND incurred_at >= $2 AND incurred_at < $3
		GROUP BY category`,
		accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[taxrate.Category]int64)
	for rows.Next() {
		var (
			category taxrate.Category
			total    int64
		)
		if err := rows.Scan(&category, &total); err != nil {
			return nil, err
		}
		totals[category] = total
	}
	return totals, rows.Err()
}
