package interfaces

import (
	"context"

	"github.com/bobmcallan/advisor/internal/models"
)

// AuthService owns the account list and the single active session.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.Session, error)
	Signup(ctx context.Context, input models.SignupInput) (*models.Session, error)
	Logout(ctx context.Context) error
	ClearError()

	IsAuthenticated() bool
	CurrentUser() *models.Session
	Accounts() []models.Account
	DemoAccounts() []models.Account
	AccountByEmail(email string) (models.Account, bool)
	Loading() bool
	Error() string

	Subscribe(fn func(models.ChangeEvent)) func()
}

// UserService is the users slice of application state.
type UserService interface {
	FetchAll(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, payload models.User) (models.User, error)
	Update(ctx context.Context, patch models.UserPatch) (models.User, error)
	Remove(ctx context.Context, id string) error

	All() []models.User
	ByID(id string) (models.User, bool)
	Loading() bool
	Error() string

	Subscribe(fn func(models.ChangeEvent)) func()
}

// PortfolioService is the portfolios slice of application state. Write
// payloads are loosely typed form data normalized before storage.
type PortfolioService interface {
	FetchAll(ctx context.Context) ([]models.Portfolio, error)
	Create(ctx context.Context, payload map[string]any) (models.Portfolio, error)
	Update(ctx context.Context, payload map[string]any) (models.Portfolio, error)
	Remove(ctx context.Context, id string) error

	All() []models.Portfolio
	ByID(id string) (models.Portfolio, bool)
	FilteredByStatus(status models.PortfolioStatus) []models.Portfolio
	ByClient(clientID string) []models.Portfolio
	Loading() bool
	Error() string

	Subscribe(fn func(models.ChangeEvent)) func()
}
