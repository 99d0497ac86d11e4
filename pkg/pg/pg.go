package pg

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Config struct {
	ConnString      string        `env:"PG_CONN_URL,required"`                      // ConnString is the PostgreSQL connection URL.
	MaxConns        int32         `env:"PG_MAX_CONNS" envDefault:"10"`              // MaxConns caps the pool size.
	MinConns        int32         `env:"PG_MIN_CONNS" envDefault:"2"`               // MinConns keeps warm connections for burst traffic.
	MaxConnLifetime time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`     // MaxConnLifetime recycles long-lived connections.
	RetryAttempts   int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`          // RetryAttempts bounds startup connect retries.
	RetryInterval   time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"5s"`         // RetryInterval is the base delay between retries.
	MigrationsPath  string        `env:"PG_MIGRATIONS_PATH" envDefault:"migrations"` // MigrationsPath points at the goose SQL directory.
}

// Connect opens a pgx pool, retrying with a linearly growing delay so a
// database that is still starting does not fail the whole service.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.ConnString)
	if err != nil {
		return nil, errors.Join(ErrInvalidConnString, err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	for attempt := range cfg.RetryAttempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
			pool.Close()
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectFailed, ctx.Err())
		case <-time.After(time.Duration(attempt+1) * cfg.RetryInterval):
		}
	}
	return nil, ErrConnectFailed
}

// Healthcheck returns a probe compatible with the HTTP health endpoint.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

// logger is the subset of slog used by Migrate, kept as an interface so
// tests can pass a recorder.
type logger interface {
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}

var _ logger = (*slog.Logger)(nil)
