package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Credential modes.
const (
	CredentialPlain  = "plain"
	CredentialBcrypt = "bcrypt"
)

type Config struct {
	Env       string `env:"CATALOG_ENV, default=development"`
	LogLevel  string `env:"LOG_LEVEL,   default=warn"`
	LogPretty bool   `env:"LOG_PRETTY,  default=true"`

	Storage     StorageConfig
	Latency     LatencyConfig
	Credentials CredentialConfig

	LoanPeriodDays  int    `env:"LOAN_PERIOD_DAYS, default=14"`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
}

type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND, default=file"`
	Dir     string `env:"STORAGE_DIR,     default=.catalog"`
	// SQLitePath defaults to <Dir>/catalog.db.
	SQLitePath string `env:"SQLITE_PATH"`
}

type LatencyConfig struct {
	Load     time.Duration `env:"LATENCY_LOAD,     default=600ms"`
	Mutation time.Duration `env:"LATENCY_MUTATION, default=800ms"`
}

type CredentialConfig struct {
	Mode       string `env:"CREDENTIAL_MODE, default=plain"`
	BcryptCost int    `env:"BCRYPT_COST,     default=10"`
}

// Load reads an optional .env file, then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration from lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = filepath.Join(cfg.Storage.Dir, "catalog.db")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of %s, %s, %s; got %q",
			BackendFile, BackendSQLite, BackendMemory, c.Storage.Backend)
	}
	switch c.Credentials.Mode {
	case CredentialPlain, CredentialBcrypt:
	default:
		return fmt.Errorf("CREDENTIAL_MODE must be %s or %s; got %q", CredentialPlain, CredentialBcrypt, c.Credentials.Mode)
	}
	if c.Latency.Load < 0 || c.Latency.Mutation < 0 {
		return errors.New("latencies must not be negative")
	}
	if c.LoanPeriodDays <= 0 {
		return fmt.Errorf("LOAN_PERIOD_DAYS must be positive; got %d", c.LoanPeriodDays)
	}
	return nil
}
