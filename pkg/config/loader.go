package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load parses environment variables into v according to its env tags.
func Load[T any](v *T) error {
	return LoadWithOptions(v, env.Options{})
}

// LoadWithOptions is Load with explicit caarlos0/env options, e.g. a custom
// Environment map in tests or a Prefix for namespaced variables.
func LoadWithOptions[T any](v *T, opts env.Options) error {
	if v == nil {
		return ErrNilPointer
	}

	if opts.Environment == nil {
		dotenvOnce.Do(func() {
			// A missing .env file is normal outside local development.
			_ = godotenv.Load()
		})
	}

	if err := env.ParseWithOptions(v, opts); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad is Load that panics, for configuration the process cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
}
