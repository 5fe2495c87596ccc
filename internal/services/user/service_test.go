package user

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/interfaces"
	"github.com/bobmcallan/advisor/internal/models"
	"github.com/bobmcallan/advisor/internal/services/portfolio"
	"github.com/bobmcallan/advisor/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *storage.Manager) {
	t.Helper()
	logger := common.NewSilentLogger()
	mgr := storage.NewManagerWithBackend(storage.NewMemoryBackend(logger), logger, nil)
	t.Cleanup(func() { mgr.Close() })
	return NewService(mgr.Users(), logger), mgr
}

func strPtr(s string) *string { return &s }

type brokenRepo struct {
	interfaces.Repository[models.User]
}

var errWrite = errors.New("disk full")

func (brokenRepo) Mutate(context.Context, func([]models.User) ([]models.User, error)) ([]models.User, error) {
	return nil, errWrite
}

func TestCreate_AssignsIDAndPassesFieldsThrough(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, models.User{ID: "ignored", Name: "  Alice  ", Email: "ALICE@example.com"})
	require.NoError(t, err)

	_, err = uuid.Parse(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "  Alice  ", u.Name, "user fields are not normalized")
	assert.Equal(t, "ALICE@example.com", u.Email)

	stored, err := mgr.Users().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{u}, stored)
	assert.Equal(t, stored, svc.All())
}

func TestUpdate_PartialMerge(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, models.User{Name: "Alice", Email: "alice@example.com", Phone: "+91 98765 10101"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.UserPatch{ID: u.ID, Phone: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
	assert.Empty(t, updated.Phone)

	got, ok := svc.ByID(u.ID)
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, models.User{Name: "Alice"})
	require.NoError(t, err)

	got, err := svc.Update(ctx, models.UserPatch{ID: "missing", Name: strPtr("Ghost")})
	require.NoError(t, err)
	assert.Equal(t, models.User{ID: "missing", Name: "Ghost"}, got)

	stored, err := mgr.Users().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{u}, stored)
}

func TestRemove_LeavesPortfoliosDangling(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()
	portfolios := portfolio.NewService(mgr.Portfolios(), common.NewSilentLogger())

	u, err := svc.Create(ctx, models.User{Name: "Alice"})
	require.NoError(t, err)
	p, err := portfolios.Create(ctx, portfolio.Payload{"clientId": u.ID, "name": "Growth 2030"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, u.ID))
	_, ok := svc.ByID(u.ID)
	assert.False(t, ok)

	stored, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Portfolio{p}, stored)
}

func TestRemove_MissingIsNoop(t *testing.T) {
	svc, _ := newTestService(t)
	require.NoError(t, svc.Remove(context.Background(), "missing"))
	assert.Empty(t, svc.All())
}

func TestWriteFailure_LeavesStateUnchanged(t *testing.T) {
	logger := common.NewSilentLogger()
	mgr := storage.NewManagerWithBackend(storage.NewMemoryBackend(logger), logger, nil)
	defer mgr.Close()
	ctx := context.Background()

	_, err := mgr.Users().SaveAll(ctx, []models.User{{ID: "u1", Name: "Alice"}})
	require.NoError(t, err)

	svc := NewService(brokenRepo{mgr.Users()}, logger)
	_, err = svc.FetchAll(ctx)
	require.NoError(t, err)

	_, err = svc.Update(ctx, models.UserPatch{ID: "u1", Name: strPtr("Changed")})
	require.ErrorIs(t, err, errWrite)
	assert.Equal(t, errWrite.Error(), svc.Error())

	got, ok := svc.ByID("u1")
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)

	// The next action clears the previous error
	_, err = svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, svc.Error())
}

func TestFetchAll_Loading(t *testing.T) {
	svc, _ := newTestService(t)

	var sawLoading bool
	svc.Subscribe(func(models.ChangeEvent) { sawLoading = svc.Loading() })

	_, err := svc.FetchAll(context.Background())
	require.NoError(t, err)
	assert.False(t, sawLoading, "loading is cleared before subscribers run")
	assert.False(t, svc.Loading())
}

// slowBackend widens the window between reading and writing a collection.
type slowBackend struct {
	interfaces.KVBackend
}

func (b slowBackend) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(5 * time.Millisecond)
	return b.KVBackend.Set(ctx, key, value)
}

func TestConcurrentWrites_SliceMatchesStore(t *testing.T) {
	logger := common.NewSilentLogger()
	mgr := storage.NewManagerWithBackend(slowBackend{storage.NewMemoryBackend(logger)}, logger, nil)
	t.Cleanup(func() { mgr.Close() })
	svc := NewService(mgr.Users(), logger)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.Create(ctx, models.User{Name: fmt.Sprintf("Client %d", i)})
			assert.NoError(t, err)
			if i%2 == 0 {
				assert.NoError(t, svc.Remove(ctx, created.ID))
			}
		}()
	}
	wg.Wait()

	stored, err := mgr.Users().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, n/2)
	assert.Equal(t, stored, svc.All())
}
