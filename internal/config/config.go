package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"LedgerLink"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledgerlink"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Provider struct {
		BaseURL string `envconfig:"PROVIDER_BASE_URL" default:"https://api.teller.io"`
	}

	Webhook struct {
		// Shared secret for verifying signed webhook deliveries.
		Secret string `envconfig:"WEBHOOK_SECRET"`
	}

	// DataEncryptionKey is the base64-encoded 256-bit key protecting
	// provider access tokens at rest. Startup fails without it.
	DataEncryptionKey string `envconfig:"DATA_ENCRYPTION_KEY"`

	Worker struct {
		SyncInterval time.Duration `envconfig:"WORKER_SYNC_INTERVAL" default:"6h"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
