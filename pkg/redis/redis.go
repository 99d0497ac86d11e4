package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrInvalidURL is returned when the connection URL cannot be parsed.
	ErrInvalidURL = errors.New("redis: invalid connection url")

	// ErrConnectFailed is returned when all connection attempts are exhausted.
	ErrConnectFailed = errors.New("redis: failed to connect")

	// ErrHealthcheckFailed is returned by the healthcheck closure on ping failure.
	ErrHealthcheckFailed = errors.New("redis: healthcheck failed")
)

type Config struct {
	URL            string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"` // URL is the Redis connection URL.
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`          // ConnectTimeout bounds the whole connect loop.
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`             // RetryAttempts bounds startup connect retries.
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`            // RetryInterval is the delay between retries.
}

// Connect opens a Redis client and verifies it with a ping, retrying until
// attempts run out or the connect timeout elapses.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, errors.Join(ErrInvalidURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	for range cfg.RetryAttempts {
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectFailed, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrConnectFailed
}

// Healthcheck returns a probe compatible with the HTTP health endpoint.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
