// Package config defines service configuration and how it is loaded.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// Env selects the logger flavour: prod, dev or local.
	Env string `koanf:"env" validate:"oneof=prod dev local"`

	// LogLevel overrides verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"omitempty,oneof=debug info warn error"`

	SpotifyClientID     string `koanf:"spotify_client_id"`
	SpotifyClientSecret string `koanf:"spotify_client_secret"`

	// RedirectURL is the OAuth callback registered with Spotify.
	RedirectURL string `koanf:"redirect_url" validate:"required,url"`

	// APIBaseURL is the Spotify Web API root.
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`

	MaxRetries     int `koanf:"max_retries" validate:"min=1,max=10"`
	RetryBackoffMS int `koanf:"retry_backoff_ms" validate:"min=1"`

	// RequestsPerSecond and RequestBurst pace outbound Spotify calls.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"gt=0"`
	RequestBurst      int     `koanf:"request_burst" validate:"min=1"`

	// SeedCount is capped at five by the recommendations endpoint.
	SeedCount           int    `koanf:"seed_count" validate:"min=1,max=5"`
	DesiredCount        int    `koanf:"desired_count" validate:"min=1"`
	RecommendationLimit int    `koanf:"recommendation_limit" validate:"min=1,max=100,gtefield=DesiredCount"`
	PlaylistName        string `koanf:"playlist_name" validate:"required"`

	// BuildRatePerMinute limits build requests per client IP.
	BuildRatePerMinute int `koanf:"build_rate_per_minute" validate:"min=1"`

	SessionTTLMinutes int `koanf:"session_ttl_minutes" validate:"min=1"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Addr:                ":5000",
		Env:                 "dev",
		RedirectURL:         "http://localhost:5000/callback",
		APIBaseURL:          "https://api.spotify.com/v1",
		MaxRetries:          3,
		RetryBackoffMS:      500,
		RequestsPerSecond:   10,
		RequestBurst:        5,
		SeedCount:           5,
		DesiredCount:        10,
		RecommendationLimit: 20,
		PlaylistName:        "Song Recommendations",
		BuildRatePerMinute:  6,
		SessionTTLMinutes:   60,
	}
}

// RetryBackoff returns the base retry backoff as a duration.
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// SessionTTL returns the session lifetime as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}
