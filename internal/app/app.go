// Package app wires configuration, storage and the application state slices
// into a single hydrated context.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/metrics"
	"github.com/bobmcallan/advisor/internal/services/auth"
	"github.com/bobmcallan/advisor/internal/services/portfolio"
	"github.com/bobmcallan/advisor/internal/services/seed"
	"github.com/bobmcallan/advisor/internal/services/user"
	"github.com/bobmcallan/advisor/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// App is the application context: one per process, hydrated from the
// durable store on construction.
type App struct {
	Config     *common.Config
	Logger     *common.Logger
	Registry   *prometheus.Registry
	Storage    interfaces.StorageManager
	Auth       interfaces.AuthService
	Users      interfaces.UserService
	Portfolios interfaces.PortfolioService

	StartupTime time.Time
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// resolveConfigPath picks the config file: the given path, then
// ADVISOR_CONFIG, then advisor.toml next to the binary, then
// config/advisor.toml for development. A missing file means defaults.
func resolveConfigPath(configPath string) string {
	if configPath != "" {
		return configPath
	}
	if env := os.Getenv("ADVISOR_CONFIG"); env != "" {
		return env
	}
	candidate := filepath.Join(getBinaryDir(), "advisor.toml")
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return "config/advisor.toml"
}

// LoadConfig reads configuration from configPath or the default locations.
func LoadConfig(configPath string) (*common.Config, error) {
	common.LoadVersionFromFile()

	config, err := common.LoadConfig(resolveConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return config, nil
}

// NewApp loads configuration from configPath (or the default locations) and
// builds the application context.
func NewApp(ctx context.Context, configPath string) (*App, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	a, err := NewAppWithConfig(ctx, config, logger)
	if err != nil {
		logger.Close()
		return nil, err
	}
	return a, nil
}

// NewAppWithConfig builds the application context: open storage, seed an
// empty workspace, hydrate auth, then load the users and portfolios slices.
func NewAppWithConfig(ctx context.Context, config *common.Config, logger *common.Logger) (*App, error) {
	startupStart := time.Now()

	registry := prometheus.NewRegistry()
	recorder := metrics.NewCollector(registry)

	storageManager, err := storage.NewManager(ctx, logger, config, recorder)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if config.Seed.Enabled {
		if _, err := seed.Run(ctx, storageManager, logger); err != nil {
			storageManager.Close()
			return nil, err
		}
	}

	authService, err := auth.NewService(ctx, storageManager, logger, &config.Auth, recorder)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to hydrate auth state: %w", err)
	}

	userService := user.NewService(storageManager.Users(), logger)
	portfolioService := portfolio.NewService(storageManager.Portfolios(), logger)

	if _, err := userService.FetchAll(ctx); err != nil {
		storageManager.Close()
		return nil, err
	}
	if _, err := portfolioService.FetchAll(ctx); err != nil {
		storageManager.Close()
		return nil, err
	}

	logger.Debug().
		Str("backend", config.Storage.Backend).
		Bool("authenticated", authService.IsAuthenticated()).
		Dur("startup", time.Since(startupStart)).
		Msg("App initialized")

	return &App{
		Config:      config,
		Logger:      logger,
		Registry:    registry,
		Storage:     storageManager,
		Auth:        authService,
		Users:       userService,
		Portfolios:  portfolioService,
		StartupTime: startupStart,
	}, nil
}

// IsAuthenticated is the single boolean the route guard reads.
func (a *App) IsAuthenticated() bool {
	return a.Auth != nil && a.Auth.IsAuthenticated()
}

// Close releases the storage backend and the log file.
func (a *App) Close() {
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
		a.Storage = nil
	}
	a.Logger.Close()
}
