package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

var (
	// ErrConnectFailed is returned when all connection attempts are exhausted.
	ErrConnectFailed = errors.New("mongo: failed to connect")

	// ErrHealthcheckFailed is returned by the healthcheck closure on ping failure.
	ErrHealthcheckFailed = errors.New("mongo: healthcheck failed")
)

type Config struct {
	URL             string        `env:"MONGODB_URL,required"`                        // URL is the MongoDB connection URL.
	Database        string        `env:"MONGODB_DATABASE" envDefault:"filingdesk"`    // Database is the application database name.
	ConnectTimeout  time.Duration `env:"MONGODB_CONNECT_TIMEOUT" envDefault:"10s"`    // ConnectTimeout bounds each dial attempt.
	MaxPoolSize     uint64        `env:"MONGODB_MAX_POOL_SIZE" envDefault:"100"`      // MaxPoolSize caps concurrent connections.
	MaxConnIdleTime time.Duration `env:"MONGODB_MAX_CONN_IDLE_TIME" envDefault:"5m"`  // MaxConnIdleTime recycles idle connections.
	RetryAttempts   int           `env:"MONGODB_RETRY_ATTEMPTS" envDefault:"3"`       // RetryAttempts bounds startup connect retries.
	RetryInterval   time.Duration `env:"MONGODB_RETRY_INTERVAL" envDefault:"5s"`      // RetryInterval is the delay between retries.
}

// Connect dials MongoDB and verifies the connection with a ping, retrying
// until attempts run out or the context is cancelled.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime)

	for range cfg.RetryAttempts {
		client, err := mongo.Connect(opts)
		if err == nil {
			if err = client.Ping(ctx, readpref.Primary()); err == nil {
				return client, nil
			}
			_ = client.Disconnect(ctx)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrConnectFailed, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}
	return nil, ErrConnectFailed
}

// Database connects and returns the configured application database.
func Database(ctx context.Context, cfg Config) (*mongo.Database, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return client.Database(cfg.Database), nil
}

// Healthcheck returns a probe compatible with the HTTP health endpoint.
func Healthcheck(client *mongo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
