// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all process configuration.
type Config struct {
	// Port the HTTP server listens on.
	Port int `env:"PORT" envDefault:"8080"`

	// ChannelSecret verifies webhook signatures.
	ChannelSecret string `env:"LINE_CHANNEL_SECRET,required"`

	// ChannelToken authenticates replies and profile lookups.
	ChannelToken string `env:"LINE_ACCESS_TOKEN,required"`

	// AllowedGroups restricts the bot to these group IDs. Empty means
	// no restriction.
	AllowedGroups []string `env:"ALLOWED_GROUPS" envSeparator:","`

	// StoreBackend selects the ledger store: "sqlite" or "csv".
	StoreBackend string `env:"STORE_BACKEND" envDefault:"sqlite"`

	// DBPath is the SQLite database file (sqlite backend).
	DBPath string `env:"DB_PATH" envDefault:"./data/ledger.db"`

	// CSVDir holds items.csv and transactions.csv (csv backend).
	CSVDir string `env:"CSV_DIR" envDefault:"./data"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
