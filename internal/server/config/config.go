// Package config loads server configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int    `env:"LOG_LEVEL" envDefault:"0"`
	// SecretKey doubles as the JWT signing key and the master key material
	// for wrapping per-file data keys.
	SecretKey string   `env:"SECRET_KEY" envDefault:"devsecret"`
	HTTP      HTTP     `envPrefix:"HTTP_"`
	Database  Database `envPrefix:"DATABASE_"`
	Token     Token    `envPrefix:"TOKEN_"`
	Storage   Storage  `envPrefix:"MINIO_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Addr            string        `env:"ADDR" envDefault:":8000"`
	BaseURL         string        `env:"BASE_URL" envDefault:"http://localhost:8000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Database contains database connection parameters. An empty DSN selects
// the in-memory repositories.
type Database struct {
	DSN string `env:"DSN" envDefault:""`
}

// Token contains access-token parameters.
type Token struct {
	Validity time.Duration `env:"VALIDITY" envDefault:"24h"`
}

// Storage contains object storage parameters. An empty endpoint selects the
// in-memory blob store.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:""`
	AccessKey string `env:"ACCESS_KEY" envDefault:"fileshare-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"fileshare-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"fileshare-files"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
