package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
	ErrMissingSecret = errors.New("spotify client credentials are required")
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ENCORE_CONFIG is set
//  3. env (prefix ENCORE_)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv("ENCORE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// ENCORE_SEED_COUNT -> seed_count; underscores are kept to match the koanf tags.
	envProvider := env.Provider("ENCORE_", ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), "encore_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// RequireCredentials reports whether the OAuth client credentials are set.
// Only the HTTP server needs them; the CLI runs with a bearer token.
func (c *Config) RequireCredentials() error {
	if c.SpotifyClientID == "" || c.SpotifyClientSecret == "" {
		return ErrMissingSecret
	}
	return nil
}
