package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/metrics"
	"github.com/bobmcallan/advisor/internal/models"
)

// Persisted keys. Values stored under them by earlier releases must stay
// readable, so these never change.
const (
	UsersKey      = "investment-portfolio-users"
	PortfoliosKey = "investment-portfolio-portfolios"
	AccountsKey   = "investment-portfolio-auth-accounts"
	SessionKey    = "investment-portfolio-auth-user"
)

// Manager implements interfaces.StorageManager over a single backend.
type Manager struct {
	store  *Store
	logger *common.Logger

	users      *Repository[models.User]
	portfolios *Repository[models.Portfolio]
	accounts   *Repository[models.Account]
	session    *Record[models.Session]
}

// NewManager opens the configured backend and builds the repositories on it.
func NewManager(ctx context.Context, logger *common.Logger, config *common.Config, recorder metrics.Recorder) (*Manager, error) {
	backend, err := NewBackend(ctx, logger, &config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s backend: %w", config.Storage.Backend, err)
	}

	logger.Info().
		Str("backend", config.Storage.Backend).
		Str("address", config.StorageAddress()).
		Msg("Storage manager initialized")

	return NewManagerWithBackend(backend, logger, recorder), nil
}

// NewManagerWithBackend builds a Manager over an already opened backend.
func NewManagerWithBackend(backend interfaces.KVBackend, logger *common.Logger, recorder metrics.Recorder) *Manager {
	store := NewStore(backend, logger, recorder)
	return &Manager{
		store:      store,
		logger:     logger,
		users:      NewRepository[models.User](store, UsersKey),
		portfolios: NewRepository[models.Portfolio](store, PortfoliosKey),
		accounts:   NewRepository[models.Account](store, AccountsKey),
		session:    NewRecord[models.Session](store, SessionKey),
	}
}

func (m *Manager) Users() interfaces.Repository[models.User] {
	return m.users
}

func (m *Manager) Portfolios() interfaces.Repository[models.Portfolio] {
	return m.portfolios
}

func (m *Manager) Accounts() interfaces.Repository[models.Account] {
	return m.accounts
}

func (m *Manager) Session() interfaces.RecordStore[models.Session] {
	return m.session
}

// Store exposes the underlying adapter.
func (m *Manager) Store() *Store {
	return m.store
}

// Clear resets users and portfolios to empty collections. Accounts and the
// session are left alone.
func (m *Manager) Clear(ctx context.Context) error {
	var errs []error
	if _, err := m.users.SaveAll(ctx, nil); err != nil {
		errs = append(errs, err)
	}
	if _, err := m.portfolios.SaveAll(ctx, nil); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	m.logger.Info().Msg("Workspace collections cleared")
	return nil
}

// Close closes the backend.
func (m *Manager) Close() error {
	return m.store.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)
