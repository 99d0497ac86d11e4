package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate applies pending goose migrations from cfg.MigrationsPath.
// goose only speaks database/sql, so the pgx pool is bridged through stdlib;
// the bridged handle shares the pool's connections and is closed afterwards.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg Config, log logger) error {
	if cfg.MigrationsPath == "" {
		return errors.Join(ErrMigrateFailed, errors.New("migrations path not set"))
	}

	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close migration db handle", "error", err)
		}
	}()

	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}
	if err := goose.UpContext(ctx, db, cfg.MigrationsPath); err != nil {
		return errors.Join(ErrMigrateFailed, err)
	}
	return nil
}

// gooseLogger routes goose's printf-style output through slog.
type gooseLogger struct {
	ctx context.Context
	log logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.log.ErrorContext(l.ctx, fmt.Sprintf(format, v...))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.log.InfoContext(l.ctx, fmt.Sprintf(format, v...))
}
