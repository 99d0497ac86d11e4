package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pgUniqueViolation = "23505"

// PgStore is the PostgreSQL-backed account store.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a store over an established pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Create(ctx context.Context, acct *Account) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (id, email, password_hash, account_type, email_verified, referral_code, referred_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		acct.ID, acct.Email, acct.PasswordHash, acct.Type, acct.EmailVerified, acct.ReferralCode, acct.ReferredBy, acct.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

const accountColumns = `id, email, password_hash, account_type, email_verified, referral_code, referred_by, created_at`

func (s *PgStore) scanAccount(row pgx.Row) (*Account, error) {
	var acct Account
	err := row.Scan(&acct.ID, &acct.Email, &acct.PasswordHash, &acct.Type, &acct.EmailVerified, &acct.ReferralCode, &acct.ReferredBy, &acct.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

func (s *PgStore) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email))
}

func (s *PgStore) GetByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

func (s *PgStore) GetByReferralCode(ctx context.Context, code string) (*Account, error) {
	return s.scanAccount(s.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE referral_code = $1`, code))
}

func (s *PgStore) SetVerificationToken(ctx context.Context, accountID uuid.UUID, token string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO account_verifications (token, account_id, created_at)
		VALUES ($1, $2, now())`,
		token, accountID,
	)
	return err
}

func (s *PgStore) ConsumeVerificationToken(ctx context.Context, token string) (uuid.UUID, error) {
	var accountID uuid.UUID
	err := s.pool.QueryRow(ctx, `
		WITH consumed AS (
			DELETE FROM account_verifications WHERE token = $1 RETURNING account_id
		)
		UPDATE accounts SET email_verified = true
		WHERE id = (SELECT account_id FROM consumed)
		RETURNING id`,
		token,
	).Scan(&accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrVerificationInvalid
		}
		return uuid.Nil, err
	}
	return accountID, nil
}
