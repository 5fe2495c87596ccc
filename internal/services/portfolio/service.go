// Package portfolio provides the portfolios slice of application state, the
// payload normalizer and derived return metrics.
package portfolio

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService
type Service struct {
	repo   interfaces.Repository[models.Portfolio]
	logger *common.Logger
	events common.Notifier

	// writeMu keeps the in-memory slice in the order writes hit the store
	writeMu sync.Mutex

	mu      sync.RWMutex
	items   []models.Portfolio
	loading bool
	err     string
}

// NewService creates a new portfolio service. The slice starts empty until
// FetchAll is called.
func NewService(repo interfaces.Repository[models.Portfolio], logger *common.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		items:  []models.Portfolio{},
	}
}

// FetchAll replaces the slice with the stored collection.
func (s *Service) FetchAll(ctx context.Context) ([]models.Portfolio, error) {
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
	out := clonePortfolios(list)
	s.mu.Unlock()

	s.logger.Debug().Int("count", len(list)).Msg("Portfolios fetched")
	s.events.Publish(models.ChangeEvent{Slice: models.SlicePortfolios, Kind: models.ChangeFetched})
	return out, nil
}

// Create normalizes payload under a fresh id and appends it.
func (s *Service) Create(ctx context.Context, payload map[string]any) (models.Portfolio, error) {
	s.clearError()

	in := maps.Clone(payload)
	if in == nil {
		in = Payload{}
	}
	in["id"] = uuid.NewString()
	p := Normalize(in)

	err := s.write(ctx, func(list []models.Portfolio) ([]models.Portfolio, error) {
		return append(list, p), nil
	})
	if err != nil {
		return models.Portfolio{}, s.fail(p.ID, "create", err)
	}

	s.logger.Info().Str("id", p.ID).Str("client", p.ClientID).Msg("Portfolio created")
	s.events.Publish(models.ChangeEvent{Slice: models.SlicePortfolios, Kind: models.ChangeCreated, ID: p.ID})
	return clonePortfolio(p), nil
}

// Update replaces the portfolio with the payload's id by the normalized
// payload. An unknown id leaves the collection as it was and still returns
// the normalized payload.
func (s *Service) Update(ctx context.Context, payload map[string]any) (models.Portfolio, error) {
	s.clearError()

	p := Normalize(payload)

	err := s.write(ctx, func(list []models.Portfolio) ([]models.Portfolio, error) {
		for i := range list {
			if list[i].ID == p.ID {
				list[i] = p
			}
		}
		return list, nil
	})
	if err != nil {
		return models.Portfolio{}, s.fail(p.ID, "update", err)
	}

	s.logger.Info().Str("id", p.ID).Msg("Portfolio updated")
	s.events.Publish(models.ChangeEvent{Slice: models.SlicePortfolios, Kind: models.ChangeUpdated, ID: p.ID})
	return clonePortfolio(p), nil
}

// Remove deletes the portfolio with id. Removing an unknown id succeeds.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.clearError()

	err := s.write(ctx, func(list []models.Portfolio) ([]models.Portfolio, error) {
		return slices.DeleteFunc(list, func(p models.Portfolio) bool { return p.ID == id }), nil
	})
	if err != nil {
		return s.fail(id, "remove", err)
	}

	s.logger.Info().Str("id", id).Msg("Portfolio removed")
	s.events.Publish(models.ChangeEvent{Slice: models.SlicePortfolios, Kind: models.ChangeRemoved, ID: id})
	return nil
}

func (s *Service) All() []models.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clonePortfolios(s.items)
}

func (s *Service) ByID(id string) (models.Portfolio, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.items {
		if p.ID == id {
			return clonePortfolio(p), true
		}
	}
	return models.Portfolio{}, false
}

// FilteredByStatus returns portfolios with the given status in stored order.
// An empty status or StatusAll returns everything.
func (s *Service) FilteredByStatus(status models.PortfolioStatus) []models.Portfolio {
	if status == "" || status == models.StatusAll {
		return s.All()
	}
	return s.filter(func(p models.Portfolio) bool { return p.Status == status })
}

// ByClient returns the portfolios whose clientId is clientID.
func (s *Service) ByClient(clientID string) []models.Portfolio {
	return s.filter(func(p models.Portfolio) bool { return p.ClientID == clientID })
}

func (s *Service) filter(keep func(models.Portfolio) bool) []models.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Portfolio{}
	for _, p := range s.items {
		if keep(p) {
			out = append(out, clonePortfolio(p))
		}
	}
	return out
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

// Subscribe registers fn for change events and returns its unsubscribe func.
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
func (s *Service) write(ctx context.Context, fn func([]models.Portfolio) ([]models.Portfolio, error)) error {
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

	s.logger.Error().Str("id", id).Str("op", op).Err(err).Msg("Portfolio action failed")
	s.events.Publish(models.ChangeEvent{Slice: models.SlicePortfolios, Kind: models.ChangeError, ID: id})
	return fmt.Errorf("failed to %s portfolio: %w", op, err)
}

func clonePortfolio(p models.Portfolio) models.Portfolio {
	p.Holdings = slices.Clone(p.Holdings)
	if p.Holdings == nil {
		p.Holdings = []models.Holding{}
	}
	return p
}

func clonePortfolios(list []models.Portfolio) []models.Portfolio {
	out := make([]models.Portfolio, len(list))
	for i, p := range list {
		out[i] = clonePortfolio(p)
	}
	return out
}
