// Package seed populates an empty workspace with demo clients and portfolios.
package seed

import (
	"context"
	"fmt"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/google/uuid"
)

// Result reports what Run wrote.
type Result struct {
	Users      int
	Portfolios int
}

func demoUsers() []models.User {
	return []models.User{
		{ID: uuid.NewString(), Name: "Alice Johnson", Email: "alice@example.com", Phone: "+91 98765 10101"},
		{ID: uuid.NewString(), Name: "Benjamin Lee", Email: "ben.lee@example.com", Phone: "+91 98765 20202"},
		{ID: uuid.NewString(), Name: "Chloe Martinez", Email: "chloe.martinez@example.com"},
	}
}

// demoPortfolios builds the demo portfolios for the given clients. The i-th
// portfolio belongs to users[i % len(users)].
func demoPortfolios(users []models.User) []models.Portfolio {
	if len(users) == 0 {
		return []models.Portfolio{}
	}

	templates := []models.Portfolio{
		{
			Name:               "Growth 2030",
			Status:             models.StatusActive,
			InitialInvestment:  50000,
			CurrentValue:       68500,
			ExpectedReturnRate: 12,
			Holdings: []models.Holding{
				{Symbol: "AAPL", Units: 120, AvgPrice: 135},
				{Symbol: "MSFT", Units: 80, AvgPrice: 220},
			},
		},
		{
			Name:               "Retirement Income",
			Status:             models.StatusUpcoming,
			InitialInvestment:  25000,
			CurrentValue:       25000,
			ExpectedReturnRate: 7,
			Holdings: []models.Holding{
				{Symbol: "BND", Units: 150, AvgPrice: 85},
				{Symbol: "VTI", Units: 60, AvgPrice: 200},
			},
		},
		{
			Name:               "College Savings",
			Status:             models.StatusClosed,
			InitialInvestment:  15000,
			CurrentValue:       17500,
			ExpectedReturnRate: 6,
			Holdings: []models.Holding{
				{Symbol: "VOO", Units: 30, AvgPrice: 320},
				{Symbol: "VXUS", Units: 45, AvgPrice: 60},
			},
		},
	}

	for i := range templates {
		templates[i].ID = uuid.NewString()
		templates[i].ClientID = users[i%len(users)].ID
	}
	return templates
}

// Run seeds each collection only when it is empty, so it is safe to call on
// every start. Portfolios reference whichever users are stored.
func Run(ctx context.Context, storage interfaces.StorageManager, logger *common.Logger) (Result, error) {
	var result Result

	users, err := storage.Users().FetchAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read users: %w", err)
	}
	if len(users) == 0 {
		users, err = storage.Users().SaveAll(ctx, demoUsers())
		if err != nil {
			return result, fmt.Errorf("failed to seed users: %w", err)
		}
		result.Users = len(users)
	}

	portfolios, err := storage.Portfolios().FetchAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read portfolios: %w", err)
	}
	if len(portfolios) == 0 {
		seeded, err := storage.Portfolios().SaveAll(ctx, demoPortfolios(users))
		if err != nil {
			return result, fmt.Errorf("failed to seed portfolios: %w", err)
		}
		result.Portfolios = len(seeded)
	}

	if result.Users > 0 || result.Portfolios > 0 {
		logger.Info().
			Int("users", result.Users).
			Int("portfolios", result.Portfolios).
			Msg("Demo data seeded")
	}
	return result, nil
}
