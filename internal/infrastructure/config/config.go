package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/emiliopalmerini/abtest/internal/adapters/otel"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreBadger = "badger"
	StoreTurso  = "turso"
)

// Database holds libsql/Turso configuration.
type Database struct {
	URL       string `envconfig:"ABTEST_DATABASE_URL"`
	AuthToken string `envconfig:"ABTEST_AUTH_TOKEN"`
}

// Badger holds the local profile store configuration.
type Badger struct {
	Path       string `envconfig:"ABTEST_BADGER_PATH"`
	SyncWrites bool   `envconfig:"ABTEST_BADGER_SYNC_WRITES" default:"true"`
}

// Config holds everything the CLI needs to build an assigner.
type Config struct {
	Store             string        `envconfig:"ABTEST_STORE" default:"badger"`
	KeyPrefix         string        `envconfig:"ABTEST_KEY_PREFIX" default:"ab_test_"`
	DefaultPercentage float64       `envconfig:"ABTEST_DEFAULT_PERCENTAGE" default:"50"`
	LogLevel          zapcore.Level `envconfig:"ABTEST_LOG_LEVEL" default:"info"`
	SinkBuffer        int           `envconfig:"ABTEST_SINK_BUFFER" default:"256"`

	Database Database    `ignored:"true"`
	Badger   Badger      `ignored:"true"`
	OTEL     otel.Config `ignored:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Database); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.Badger); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", &cfg.OTEL); err != nil {
		return nil, err
	}

	if cfg.Badger.Path == "" {
		dir, err := defaultProfileDir()
		if err != nil {
			return nil, err
		}
		cfg.Badger.Path = dir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field requirements.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreBadger:
	case StoreTurso:
		if c.Database.URL == "" {
			return fmt.Errorf("ABTEST_DATABASE_URL is required for the %s store", StoreTurso)
		}
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreMemory, StoreBadger, StoreTurso)
	}
	if c.KeyPrefix == "" {
		return fmt.Errorf("ABTEST_KEY_PREFIX must not be empty")
	}
	return nil
}

// defaultProfileDir respects XDG_DATA_HOME, falling back to
// ~/.local/share/abtest/profile.
func defaultProfileDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, "abtest", "profile"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "abtest", "profile"), nil
}
