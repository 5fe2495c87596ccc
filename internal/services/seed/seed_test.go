package seed

import (
	"context"
	"testing"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/bobmcallan/advisor/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *storage.Manager {
	t.Helper()
	logger := common.NewSilentLogger()
	mgr := storage.NewManagerWithBackend(storage.NewMemoryBackend(logger), logger, nil)
	t.Cleanup(func() { mgr.Close() })
	return mgr
}

func TestRun_FirstRun(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	result, err := Run(ctx, mgr, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3, Portfolios: 3}, result)

	users, err := mgr.Users().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "Alice Johnson", users[0].Name)
	assert.Empty(t, users[2].Phone)

	portfolios, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, portfolios, 3)
	for i, p := range portfolios {
		assert.Equal(t, users[i].ID, p.ClientID)
		assert.NotEmpty(t, p.ID)
		assert.Len(t, p.Holdings, 2)
	}
	assert.Equal(t, []models.PortfolioStatus{models.StatusActive, models.StatusUpcoming, models.StatusClosed},
		[]models.PortfolioStatus{portfolios[0].Status, portfolios[1].Status, portfolios[2].Status})
}

func TestRun_Idempotent(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, err := Run(ctx, mgr, common.NewSilentLogger())
	require.NoError(t, err)
	before, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)

	result, err := Run(ctx, mgr, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{}, result)

	after, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRun_ExistingUsersOnly(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.Users().SaveAll(ctx, []models.User{{ID: "solo", Name: "Solo Client"}})
	require.NoError(t, err)

	result, err := Run(ctx, mgr, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{Portfolios: 3}, result)

	users, err := mgr.Users().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1, "existing users are never reseeded")

	portfolios, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	for _, p := range portfolios {
		assert.Equal(t, "solo", p.ClientID)
	}
}

func TestRun_ExistingPortfoliosOnly(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	existing := []models.Portfolio{{ID: "p1", Name: "Mine", Holdings: []models.Holding{}}}
	_, err := mgr.Portfolios().SaveAll(ctx, existing)
	require.NoError(t, err)

	result, err := Run(ctx, mgr, common.NewSilentLogger())
	require.NoError(t, err)
	assert.Equal(t, Result{Users: 3}, result)

	portfolios, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, existing, portfolios)
}

func TestDemoPortfolios_NoUsers(t *testing.T) {
	assert.Empty(t, demoPortfolios(nil))
}

func TestDemoPortfolios_FewerUsersWrap(t *testing.T) {
	users := []models.User{{ID: "a"}, {ID: "b"}}
	got := demoPortfolios(users)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{got[0].ClientID, got[1].ClientID, got[2].ClientID})
}
