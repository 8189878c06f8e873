// Copyright (c) 2026 Gazette. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Once loaded, configuration is read-only and handed to components through
their constructors.
*/
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/taibuivan/gazette/internal/platform/sec"
)

var (
	// ErrWeakTokenSecret is returned when TOKEN_SECRET is too short to sign with.
	ErrWeakTokenSecret = fmt.Errorf("config: TOKEN_SECRET must be at least %d bytes", sec.MinSecretLength)

	// ErrMissingRecaptcha is returned when production runs without CAPTCHA verification.
	ErrMissingRecaptcha = errors.New("config: RECAPTCHA_SECRET is required in production")
)

// # Configuration Schema

// Config holds all runtime configuration for the Gazette API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value store (Redis), also carrying the notification outbox
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Token signing
	TokenSecret        string        `env:"TOKEN_SECRET,required"`
	SessionTokenTTL    time.Duration `env:"SESSION_TOKEN_TTL"    envDefault:"168h"`
	ResetTokenTTL      time.Duration `env:"RESET_TOKEN_TTL"      envDefault:"30m"`
	ActivationTokenTTL time.Duration `env:"ACTIVATION_TOKEN_TTL" envDefault:"72h"`

	// CAPTCHA (Google reCAPTCHA). Empty secret disables verification outside production.
	RecaptchaSecret    string `env:"RECAPTCHA_SECRET"`
	RecaptchaVerifyURL string `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`

	// Cross-Origin Resource Sharing
	CORSOriginSuffix string `env:"CORS_ORIGIN_SUFFIX" envDefault:"gazette.app"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	if len(c.TokenSecret) < sec.MinSecretLength {
		return ErrWeakTokenSecret
	}
	if c.IsProduction() && c.RecaptchaSecret == "" {
		return ErrMissingRecaptcha
	}
	return nil
}

// TokenTTLs groups the configured token lifetimes.
func (c *Config) TokenTTLs() sec.TokenTTLs {
	return sec.TokenTTLs{
		Session:    c.SessionTokenTTL,
		Reset:      c.ResetTokenTTL,
		Activation: c.ActivationTokenTTL,
	}
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AllowedOriginSuffix is the host suffix CORS accepts outside development.
func (c *Config) AllowedOriginSuffix() string {
	return c.CORSOriginSuffix
}
