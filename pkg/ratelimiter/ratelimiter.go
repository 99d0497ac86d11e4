package ratelimiter

import (
	"context"
	"fmt"
	"time"
)

// Config describes one token bucket: Capacity tokens, refilled by RefillRate
// every RefillInterval.
type Config struct {
	Capacity       int
	RefillRate     int
	RefillInterval time.Duration
}

func (c Config) validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive, got %d", ErrInvalidConfig, c.Capacity)
	}
	if c.RefillRate <= 0 {
		return fmt.Errorf("%w: refill rate must be positive, got %d", ErrInvalidConfig, c.RefillRate)
	}
	if c.RefillInterval <= 0 {
		return fmt.Errorf("%w: refill interval must be positive, got %v", ErrInvalidConfig, c.RefillInterval)
	}
	return nil
}

// Result reports the outcome of one limiter decision.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store persists bucket state. Implementations must apply the take-or-deny
// decision atomically per key.
type Store interface {
	// Take consumes n tokens from the bucket for key, refilling it first
	// according to cfg. When the bucket holds fewer than n tokens, nothing is
	// consumed and allowed is false.
	Take(ctx context.Context, key string, n int, cfg Config) (remaining int, resetAt time.Time, allowed bool, err error)

	// Reset drops all state for key.
	Reset(ctx context.Context, key string) error
}

// Limiter applies a token-bucket policy over a Store.
type Limiter struct {
	store Store
	cfg   Config
}

// New validates the bucket parameters and returns a Limiter.
func New(store Store, cfg Config) (*Limiter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow consumes one token for key.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	return l.AllowN(ctx, key, 1)
}

// AllowN consumes n tokens for key.
func (l *Limiter) AllowN(ctx context.Context, key string, n int) (Result, error) {
	if n <= 0 {
		return Result{}, fmt.Errorf("%w: token count must be positive, got %d", ErrInvalidConfig, n)
	}

	remaining, resetAt, allowed, err := l.store.Take(ctx, key, n, l.cfg)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return Result{
		Allowed:   allowed,
		Limit:     l.cfg.Capacity,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the bucket for key.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	return l.store.Reset(ctx, key)
}
