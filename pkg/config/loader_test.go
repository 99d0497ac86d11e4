package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filingdesk/filingdesk/pkg/config"
)

type loaderTestConfig struct {
	Name  string `env:"LOADER_TEST_NAME" envDefault:"fallback"`
	Port  int    `env:"LOADER_TEST_PORT" envDefault:"8080"`
	Debug bool   `env:"LOADER_TEST_DEBUG" envDefault:"false"`
}

type requiredTestConfig struct {
	Token string `env:"LOADER_TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		config.Reset()

		var cfg loaderTestConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.False(t, cfg.Debug)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		config.Reset()
		t.Setenv("LOADER_TEST_NAME", "filingdesk")
		t.Setenv("LOADER_TEST_PORT", "9090")

		var cfg loaderTestConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "filingdesk", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("cached between calls", func(t *testing.T) {
		config.Reset()
		t.Setenv("LOADER_TEST_NAME", "first")

		var first loaderTestConfig
		require.NoError(t, config.Load(&first))

		// A later env change must not leak into the cached type.
		t.Setenv("LOADER_TEST_NAME", "second")
		var second loaderTestConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, "first", second.Name)
	})

	t.Run("missing required value", func(t *testing.T) {
		config.Reset()

		var cfg requiredTestConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsing)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[loaderTestConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	config.Reset()

	assert.Panics(t, func() {
		var cfg requiredTestConfig
		config.MustLoad(&cfg)
	})
}
