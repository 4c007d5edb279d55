package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Backend string

const (
	BackendFile     Backend = "file"
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendMemory   Backend = "memory"
)

func (b Backend) Valid() bool {
	switch b {
	case BackendFile, BackendPostgres, BackendSQLite, BackendMemory:
		return true
	}
	return false
}

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Storage
	StorageBackend Backend `env:"STORAGE_BACKEND" envDefault:"file"`
	DataDir        string  `env:"DATA_DIR" envDefault:"data"`
	DatabaseURL    string  `env:"DATABASE_URL"`
	SQLitePath     string  `env:"SQLITE_PATH" envDefault:"data/prompts.db"`

	// Behaviour
	StrictNotFound bool `env:"STRICT_NOT_FOUND" envDefault:"false"`
	MCPEnabled     bool `env:"MCP_ENABLED" envDefault:"true"`

	// Backups
	BackupSchedule string `env:"BACKUP_SCHEDULE"`
	BackupDir      string `env:"BACKUP_DIR" envDefault:"backups"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// LoadDotEnv reads the given .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Parse reads the environment into a Config without validating it, so callers
// can apply overrides such as CLI flags first.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load parses the environment into a Config and checks cross-field rules.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !c.StorageBackend.Valid() {
		return fmt.Errorf("invalid STORAGE_BACKEND %q: must be one of file, postgres, sqlite, memory", c.StorageBackend)
	}
	if c.StorageBackend == BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required for the postgres backend")
	}
	return nil
}
