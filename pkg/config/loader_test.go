package config_test

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/teamauth/pkg/config"
)

type sampleConfig struct {
	Secret string        `env:"SAMPLE_SECRET,required"`
	TTL    time.Duration `env:"SAMPLE_TTL" envDefault:"168h"`
	Scopes []string      `env:"SAMPLE_SCOPES" envSeparator:"," envDefault:"openid,email"`
}

func TestLoadWithOptions(t *testing.T) {
	t.Parallel()

	t.Run("defaults and overrides", func(t *testing.T) {
		t.Parallel()
		var cfg sampleConfig
		err := config.LoadWithOptions(&cfg, env.Options{Environment: map[string]string{
			"SAMPLE_SECRET": "s3cret",
		}})
		require.NoError(t, err)
		assert.Equal(t, "s3cret", cfg.Secret)
		assert.Equal(t, 168*time.Hour, cfg.TTL)
		assert.Equal(t, []string{"openid", "email"}, cfg.Scopes)
	})

	t.Run("missing required variable", func(t *testing.T) {
		t.Parallel()
		var cfg sampleConfig
		err := config.LoadWithOptions(&cfg, env.Options{Environment: map[string]string{}})
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil target", func(t *testing.T) {
		t.Parallel()
		err := config.LoadWithOptions[sampleConfig](nil, env.Options{})
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}
