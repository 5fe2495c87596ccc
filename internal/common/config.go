package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Default simulated auth latencies. They model a network round trip for UI
// feedback and carry no correctness meaning.
const (
	DefaultLoginLatency  = 150 * time.Millisecond
	DefaultSignupLatency = 200 * time.Millisecond
)

// Config holds all configuration for the advisor workspace
type Config struct {
	Environment string        `toml:"environment"`
	Storage     StorageConfig `toml:"storage"`
	Auth        AuthConfig    `toml:"auth"`
	Seed        SeedConfig    `toml:"seed"`
	Logging     LoggingConfig `toml:"logging"`
}

// StorageConfig selects the key-value backend and holds per-backend settings.
type StorageConfig struct {
	Backend   string          `toml:"backend"` // file (default), memory, badger, surrealdb
	File      AreaConfig      `toml:"file"`
	Badger    AreaConfig      `toml:"badger"`
	SurrealDB SurrealDBConfig `toml:"surrealdb"`
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// SurrealDBConfig holds connection settings for the SurrealDB backend.
type SurrealDBConfig struct {
	Address   string `toml:"address"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	Namespace string `toml:"namespace"`
	Database  string `toml:"database"`
}

// AuthConfig holds the simulated latency applied to login and signup.
type AuthConfig struct {
	LoginLatency  string `toml:"login_latency"`
	SignupLatency string `toml:"signup_latency"`
}

// GetLoginLatency parses and returns the login latency
func (c *AuthConfig) GetLoginLatency() time.Duration {
	return parseLatency(c.LoginLatency, DefaultLoginLatency)
}

// GetSignupLatency parses and returns the signup latency
func (c *AuthConfig) GetSignupLatency() time.Duration {
	return parseLatency(c.SignupLatency, DefaultSignupLatency)
}

func parseLatency(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// SeedConfig controls the first-run demo data bootstrap.
type SeedConfig struct {
	Enabled bool `toml:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string   `toml:"level"`
	Format     string   `toml:"format"`
	Outputs    []string `toml:"outputs"`
	FilePath   string   `toml:"file_path"`
	MaxSizeMB  int      `toml:"max_size_mb"`
	MaxBackups int      `toml:"max_backups"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Backend: "file",
			File:    AreaConfig{Path: "data/store"},
			Badger:  AreaConfig{Path: "data/badger"},
			SurrealDB: SurrealDBConfig{
				Address:   "ws://localhost:8000/rpc",
				Username:  "root",
				Password:  "root",
				Namespace: "advisor",
				Database:  "workspace",
			},
		},
		Auth: AuthConfig{
			LoginLatency:  DefaultLoginLatency.String(),
			SignupLatency: DefaultSignupLatency.String(),
		},
		Seed: SeedConfig{Enabled: true},
		Logging: LoggingConfig{
			Level:      "warn",
			Format:     "console",
			Outputs:    []string{"console"},
			FilePath:   "./logs/advisor.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	config.Storage.Backend = strings.ToLower(strings.TrimSpace(config.Storage.Backend))

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ADVISOR_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("ADVISOR_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("ADVISOR_DATA_PATH"); path != "" {
		config.Storage.File.Path = filepath.Join(path, "store")
		config.Storage.Badger.Path = filepath.Join(path, "badger")
	}

	if backend := os.Getenv("ADVISOR_STORAGE_BACKEND"); backend != "" {
		config.Storage.Backend = backend
	}

	if v := os.Getenv("ADVISOR_SURREALDB_ADDRESS"); v != "" {
		config.Storage.SurrealDB.Address = v
	}
	if v := os.Getenv("ADVISOR_SURREALDB_USERNAME"); v != "" {
		config.Storage.SurrealDB.Username = v
	}
	if v := os.Getenv("ADVISOR_SURREALDB_PASSWORD"); v != "" {
		config.Storage.SurrealDB.Password = v
	}

	if v := os.Getenv("ADVISOR_AUTH_LOGIN_LATENCY"); v != "" {
		config.Auth.LoginLatency = v
	}
	if v := os.Getenv("ADVISOR_AUTH_SIGNUP_LATENCY"); v != "" {
		config.Auth.SignupLatency = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// StorageAddress describes where the configured backend keeps its data.
func (c *Config) StorageAddress() string {
	switch c.Storage.Backend {
	case "memory":
		return "memory"
	case "badger":
		return c.Storage.Badger.Path
	case "surrealdb":
		return c.Storage.SurrealDB.Address
	default:
		return c.Storage.File.Path
	}
}
