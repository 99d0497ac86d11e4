package returnurl

import "time"

type Config struct {
	Secret string        `env:"RETURNURL_SECRET,required"`      // Secret is the HMAC signing key shared by all instances.
	TTL    time.Duration `env:"RETURNURL_TTL" envDefault:"1h"`  // TTL is the validity window for issued tokens.
}

// NewFromConfig creates a Service from environment-backed configuration.
// The allow-list stays a code-level argument: eligible destinations are a
// property of the application's routes, not of the deployment.
func NewFromConfig(cfg Config, allowed []string, opts ...Option) (*Service, error) {
	if cfg.TTL > 0 {
		opts = append([]Option{WithTTL(cfg.TTL)}, opts...)
	}
	return New(cfg.Secret, allowed, opts...)
}
