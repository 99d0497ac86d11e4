package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	mu     sync.Mutex
	cache  = make(map[string]any)
	dotenv sync.Once
)

// Load parses environment variables into v. The first successful parse of a
// given struct type is cached; later calls for the same type return the
// cached copy, so config structs behave as process-wide singletons.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenv.Do(func() {
		// A missing .env file is the normal case outside local development.
		_ = godotenv.Load()
	})

	key := fmt.Sprintf("%T", *v)

	mu.Lock()
	defer mu.Unlock()

	if cached, ok := cache[key]; ok {
		*v = cached.(T)
		return nil
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsing, err)
	}
	cache[key] = *v
	return nil
}

// MustLoad is Load that panics on failure, for configuration the process
// cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: failed to load %T: %v", *v, err))
	}
}

// Reset drops all cached configuration values. Intended for tests that
// mutate the process environment between loads.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	cache = make(map[string]any)
}
