// Package user provides the users slice of application state
package user

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.UserService = (*Service)(nil)

// Service implements UserService. User payloads are stored as given; there
// is no normalization step for users.
type Service struct {
	repo   interfaces.Repository[models.User]
	logger *common.Logger
	events common.Notifier

	// writeMu keeps the in-memory slice in the order writes hit the store
	writeMu sync.Mutex

	mu      sync.RWMutex
	items   []models.User
	loading bool
	err     string
}

// NewService creates a new user service
func NewService(repo interfaces.Repository[models.User], logger *common.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		items:  []models.User{},
	}
}

// FetchAll replaces the slice with the stored collection
func (s *Service) FetchAll(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	list, err := s.repo.FetchAll(ctx)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.mu.Unlock()
		return nil, s.fail("", "load", err)
	}
	s.items = list
	out := slices.Clone(list)
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(list)).Msg("Users fetched")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeFetched})
	return out, nil
}

// Create stores payload under a fresh id
func (s *Service) Create(ctx context.Context, payload models.User) (models.User, error) {
	s.clearError()

	u := payload
	u.ID = uuid.NewString()

	err := s.write(ctx, func(list []models.User) ([]models.User, error) {
		return append(list, u), nil
	})
	if err != nil {
		return models.User{}, s.fail(u.ID, "create", err)
	}

	s.logger.Info().Str("id", u.ID).Msg("User created")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeCreated, ID: u.ID})
	return u, nil
}

// Update merges the patch into the user with the same id. When no user has
// that id the collection is written back unchanged and the patch is returned
// as a record.
func (s *Service) Update(ctx context.Context, patch models.UserPatch) (models.User, error) {
	s.clearError()

	result := patch.User()
	err := s.write(ctx, func(list []models.User) ([]models.User, error) {
		for i := range list {
			if list[i].ID == patch.ID {
				list[i] = patch.Apply(list[i])
				result = list[i]
			}
		}
		return list, nil
	})
	if err != nil {
		return models.User{}, s.fail(patch.ID, "update", err)
	}

	s.logger.Info().Str("id", patch.ID).Msg("User updated")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeUpdated, ID: patch.ID})
	return result, nil
}

// Remove deletes the user with id. Portfolios referencing the user are left
// in place.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.clearError()

	err := s.write(ctx, func(list []models.User) ([]models.User, error) {
		return slices.DeleteFunc(list, func(u models.User) bool { return u.ID == id }), nil
	})
	if err != nil {
		return s.fail(id, "remove", err)
	}

	s.logger.Info().Str("id", id).Msg("User removed")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeRemoved, ID: id})
	return nil
}

func (s *Service) All() []models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Service) ByID(id string) (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.items {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

func (s *Service) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Service) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *Service) Subscribe(fn func(models.ChangeEvent)) func() {
	return s.events.Subscribe(fn)
}

func (s *Service) clearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

// write applies fn to the stored collection and adopts the result before
// the next write can start.
func (s *Service) write(ctx context.Context, fn func([]models.User) ([]models.User, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	written, err := s.repo.Mutate(ctx, fn)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.items = written
	s.mu.Unlock()
	return nil
}

func (s *Service) fail(id, op string, err error) error {
	s.mu.Lock()
	s.err = err.Error()
	s.mu.Unlock()

	s.logger.Error().Str("id", id).Str("op", op).Err(err).Msg("User action failed")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceUsers, Kind: models.ChangeError, ID: id})
	return fmt.Errorf("failed to %s user: %w", op, err)
}
