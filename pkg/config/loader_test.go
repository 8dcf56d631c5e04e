package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/cyphervault/pkg/config"
)

func TestLoad(t *testing.T) {
	t.Run("parses env vars into struct", func(t *testing.T) {
		t.Setenv("TEST_APP_NAME", "cyphervault")
		t.Setenv("TEST_APP_PORT", "8088")

		type appConfig struct {
			Name string `env:"TEST_APP_NAME"`
			Port int    `env:"TEST_APP_PORT" envDefault:"8080"`
		}

		var cfg appConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "cyphervault", cfg.Name)
		assert.Equal(t, 8088, cfg.Port)
	})

	t.Run("applies defaults when env vars are absent", func(t *testing.T) {
		type serverConfig struct {
			Host string `env:"TEST_UNSET_HOST" envDefault:"localhost"`
			Port int    `env:"TEST_UNSET_PORT" envDefault:"9090"`
		}

		var cfg serverConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 9090, cfg.Port)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		type strictConfig struct {
			Secret string `env:"TEST_MISSING_SECRET,required"`
		}

		var cfg strictConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		type emptyConfig struct{}
		err := config.Load[emptyConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		type strictConfig struct {
			Token string `env:"TEST_MUSTLOAD_TOKEN,required"`
		}

		assert.Panics(t, func() {
			var cfg strictConfig
			config.MustLoad(&cfg)
		})
	})
}
