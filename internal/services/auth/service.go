// Package auth provides the demo account list and the single active session.
package auth

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/metrics"
	"github.com/bobmcallan/advisor/internal/models"
)

// Messages shown to the advisor for failed auth actions.
const (
	InvalidCredentialsMessage = "Invalid email or password. Please use one of the demo accounts shown."
	DuplicateAccountMessage   = "An account with this email already exists."

	defaultAccountName = "Demo User"
	defaultSignupName  = "New Advisor"
)

// SeedAccounts always exist after hydration.
var SeedAccounts = []models.Account{
	{
		Email:    "advisor@demo.in",
		Password: "demo123",
		Name:     "Demo Wealth Advisor",
		Title:    "Senior Advisor",
		IsDemo:   true,
	},
	{
		Email:    "analyst@demo.in",
		Password: "alpha321",
		Name:     "Research Analyst",
		Title:    "Portfolio Research",
		IsDemo:   true,
	},
}

// Compile-time interface check
var _ interfaces.AuthService = (*Service)(nil)

// Service implements AuthService
type Service struct {
	accountsRepo interfaces.Repository[models.Account]
	sessionRepo  interfaces.RecordStore[models.Session]
	logger       *common.Logger
	metrics      metrics.Recorder
	events       common.Notifier

	loginLatency  time.Duration
	signupLatency time.Duration

	// writeMu orders account writes with their reflection in memory
	writeMu sync.Mutex

	mu       sync.RWMutex
	accounts []models.Account
	current  *models.Session
	loading  bool
	err      string
}

// NewService hydrates auth state from storage: accounts are sanitized and
// written back, and the persisted session is adopted only when it still
// names an existing account.
func NewService(ctx context.Context, storage interfaces.StorageManager, logger *common.Logger, config *common.AuthConfig, recorder metrics.Recorder) (*Service, error) {
	if recorder == nil {
		recorder = metrics.Nop()
	}
	s := &Service{
		accountsRepo:  storage.Accounts(),
		sessionRepo:   storage.Session(),
		logger:        logger,
		metrics:       recorder,
		loginLatency:  config.GetLoginLatency(),
		signupLatency: config.GetSignupLatency(),
	}
	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) hydrate(ctx context.Context) error {
	stored, err := s.accountsRepo.FetchAll(ctx)
	if err != nil {
		return err
	}
	accounts, err := s.accountsRepo.SaveAll(ctx, SanitizeAccounts(stored))
	if err != nil {
		return err
	}
	s.accounts = accounts

	record, err := s.sessionRepo.Load(ctx)
	if err != nil {
		return err
	}

	var account models.Account
	found := false
	if record != nil && record.Email != "" {
		account, found = s.AccountByEmail(record.Email)
	}
	if !found {
		if record != nil {
			s.logger.Warn().Str("email", record.Email).Msg("Stored session has no matching account, clearing")
		}
		if err := s.sessionRepo.Clear(ctx); err != nil {
			return err
		}
		s.logger.Debug().Int("accounts", len(accounts)).Msg("Auth state hydrated, logged out")
		return nil
	}

	s.current = &models.Session{
		Name:  firstNonEmpty(record.Name, account.Name),
		Email: account.Email,
		Title: firstNonEmpty(record.Title, account.Title),
	}
	s.logger.Debug().Int("accounts", len(accounts)).Str("email", account.Email).Msg("Auth state hydrated, session restored")
	return nil
}

// SanitizeAccounts normalizes emails, defaults blank names, drops entries
// without an email or password, keeps the first of any duplicate emails and
// appends missing seed accounts.
func SanitizeAccounts(stored []models.Account) []models.Account {
	out := make([]models.Account, 0, len(stored)+len(SeedAccounts))
	seen := make(map[string]bool, len(stored))

	for _, a := range stored {
		a.Email = normalizeEmail(a.Email)
		if a.Email == "" || a.Password == "" || seen[a.Email] {
			continue
		}
		if a.Name == "" {
			a.Name = defaultAccountName
		}
		seen[a.Email] = true
		out = append(out, a)
	}

	for _, seed := range SeedAccounts {
		if !seen[seed.Email] {
			out = append(out, seed)
		}
	}
	return out
}

// Login checks the credentials against the account list and adopts a new
// session on success. Failures are returned and mirrored into Error().
func (s *Service) Login(ctx context.Context, email, password string) (*models.Session, error) {
	s.start()
	session, err := s.login(ctx, email, password)
	return s.finish(ctx, "login", session, err)
}

func (s *Service) login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := wait(ctx, s.loginLatency); err != nil {
		return nil, err
	}

	account, ok := s.AccountByEmail(email)
	if !ok || account.Password != password {
		return nil, &models.UserError{Kind: models.ErrInvalidCredentials, Message: InvalidCredentialsMessage}
	}

	session := &models.Session{Name: account.Name, Email: account.Email, Title: account.Title}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Signup creates a non-demo account and logs it in.
func (s *Service) Signup(ctx context.Context, input models.SignupInput) (*models.Session, error) {
	s.start()
	session, err := s.signup(ctx, input)
	return s.finish(ctx, "signup", session, err)
}

func (s *Service) signup(ctx context.Context, input models.SignupInput) (*models.Session, error) {
	if err := wait(ctx, s.signupLatency); err != nil {
		return nil, err
	}

	email := normalizeEmail(input.Email)
	account := models.Account{
		Email:    email,
		Password: input.Password,
		Name:     firstNonEmpty(strings.TrimSpace(input.Name), defaultSignupName),
		Title:    strings.TrimSpace(input.Title),
		IsDemo:   false,
	}

	// The duplicate check runs against the stored list under the key lock so
	// concurrent signups each see the other's account.
	s.writeMu.Lock()
	written, err := s.accountsRepo.Mutate(ctx, func(list []models.Account) ([]models.Account, error) {
		for _, a := range list {
			if normalizeEmail(a.Email) == email {
				return nil, &models.UserError{Kind: models.ErrDuplicateAccount, Message: DuplicateAccountMessage}
			}
		}
		return append(list, account), nil
	})
	if err == nil {
		s.mu.Lock()
		s.accounts = written
		s.mu.Unlock()
	}
	s.writeMu.Unlock()
	if err != nil {
		return nil, err
	}
	s.logger.Info().Str("email", email).Msg("Account created")

	session := &models.Session{Name: account.Name, Email: account.Email, Title: account.Title}
	if err := s.sessionRepo.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Logout clears the session. The in-memory session is dropped even when the
// persisted record could not be removed.
func (s *Service) Logout(ctx context.Context) error {
	err := s.sessionRepo.Clear(ctx)

	s.mu.Lock()
	email := ""
	if s.current != nil {
		email = s.current.Email
	}
	s.current = nil
	s.err = ""
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to clear stored session")
		return err
	}
	s.logger.Info().Str("email", email).Msg("Logged out")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceAuth, Kind: models.ChangeLogout, ID: email})
	return nil
}

func (s *Service) ClearError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current != nil
}

// CurrentUser returns a copy of the session, or nil when logged out.
func (s *Service) CurrentUser() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	session := *s.current
	return &session
}

func (s *Service) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

// DemoAccounts returns the accounts flagged as demo logins.
func (s *Service) DemoAccounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Account{}
	for _, a := range s.accounts {
		if a.IsDemo {
			out = append(out, a)
		}
	}
	return out
}

// AccountByEmail looks an account up by trimmed, case-insensitive email.
func (s *Service) AccountByEmail(email string) (models.Account, bool) {
	email = normalizeEmail(email)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			return a, true
		}
	}
	return models.Account{}, false
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

func (s *Service) start() {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
}

// finish ends a login or signup: on success the session is adopted, on
// failure the message is mirrored into Error() and the session is kept.
func (s *Service) finish(ctx context.Context, action string, session *models.Session, err error) (*models.Session, error) {
	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
	} else {
		s.current = session
	}
	s.mu.Unlock()

	s.metrics.RecordAuthAttempt(action, err == nil)

	if err != nil {
		var userErr *models.UserError
		if errors.As(err, &userErr) || ctx.Err() != nil {
			s.logger.Warn().Str("action", action).Err(err).Msg("Auth attempt rejected")
		} else {
			s.logger.Error().Str("action", action).Err(err).Msg("Auth attempt failed")
		}
		s.events.Publish(models.ChangeEvent{Slice: models.SliceAuth, Kind: models.ChangeError})
		return nil, err
	}

	s.logger.Info().Str("action", action).Str("email", session.Email).Msg("Logged in")
	s.events.Publish(models.ChangeEvent{Slice: models.SliceAuth, Kind: models.ChangeLogin, ID: session.Email})
	out := *session
	return &out, nil
}

// wait blocks for d, or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
