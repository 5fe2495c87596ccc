package portfolio

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
	return NewService(mgr.Portfolios(), logger), mgr
}

// brokenRepo reads from an embedded repository but fails every write.
type brokenRepo struct {
	interfaces.Repository[models.Portfolio]
}

var errWrite = errors.New("quota exceeded")

func (brokenRepo) SaveAll(context.Context, []models.Portfolio) ([]models.Portfolio, error) {
	return nil, errWrite
}

func (brokenRepo) Mutate(context.Context, func([]models.Portfolio) ([]models.Portfolio, error)) ([]models.Portfolio, error) {
	return nil, errWrite
}

func TestCreate_NormalizesAndPersists(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Payload{
		"clientId":          "u1",
		"name":              "Gamma",
		"status":            "ACTIVE",
		"currentValue":      150,
		"initialInvestment": 100,
	})
	require.NoError(t, err)

	_, err = uuid.Parse(p.ID)
	assert.NoError(t, err, "id should be a fresh uuid")
	require.NotNil(t, p.Holdings)
	assert.Empty(t, p.Holdings)
	assert.Equal(t, "50.00%", FormatPercent(ReturnPercent(p)))

	stored, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Portfolio{p}, stored)
	assert.Equal(t, stored, svc.All())
}

func TestCreate_IgnoresPayloadID(t *testing.T) {
	svc, _ := newTestService(t)
	payload := Payload{"id": "chosen", "name": "Alpha"}

	p, err := svc.Create(context.Background(), payload)
	require.NoError(t, err)
	assert.NotEqual(t, "chosen", p.ID)
	assert.Equal(t, "chosen", payload["id"], "caller payload must not be modified")
}

func TestFetchAll_AbsentIsEmpty(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()
	require.NoError(t, mgr.Store().Remove(ctx, storage.PortfoliosKey))

	list, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.False(t, svc.Loading())
	assert.Empty(t, svc.Error())
}

func TestUpdate_ReplacesWholeRecord(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Payload{
		"name":     "Alpha",
		"holdings": []any{map[string]any{"symbol": "AAPL", "units": 10, "avgPrice": 10}},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, Payload{"id": created.ID, "name": "Alpha II", "currentValue": "200"})
	require.NoError(t, err)
	assert.Equal(t, "Alpha II", updated.Name)
	assert.Equal(t, 200.0, updated.CurrentValue)
	assert.Empty(t, updated.Holdings, "update is a replacement, not a merge")

	got, ok := svc.ByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, updated, got)
}

func TestUpdate_UnknownIDLeavesCollection(t *testing.T) {
	svc, mgr := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, Payload{"name": "Alpha"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, Payload{"id": "missing", "name": "Ghost"})
	require.NoError(t, err)
	assert.Equal(t, "Ghost", updated.Name)

	stored, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.Portfolio{created}, stored)
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, Payload{"name": "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, Payload{"name": "B"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, a.ID))
	assert.Equal(t, []models.Portfolio{b}, svc.All())

	require.NoError(t, svc.Remove(ctx, "missing"))
	assert.Len(t, svc.All(), 1)
}

func TestFilteredByStatus(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, in := range []Payload{
		{"name": "Alpha", "status": "ACTIVE"},
		{"name": "Beta", "status": "UPCOMING"},
		{"name": "Gamma", "status": "ACTIVE"},
	} {
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	assert.Len(t, svc.FilteredByStatus(models.StatusAll), 3)
	assert.Len(t, svc.FilteredByStatus(""), 3)

	active := svc.FilteredByStatus(models.StatusActive)
	require.Len(t, active, 2)
	assert.Equal(t, "Alpha", active[0].Name)
	assert.Equal(t, "Gamma", active[1].Name)

	assert.Empty(t, svc.FilteredByStatus(models.StatusClosed))
}

func TestByClient(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, Payload{"name": "A", "clientId": "u1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Payload{"name": "B", "clientId": "u2"})
	require.NoError(t, err)

	got := svc.ByClient("u1")
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Name)
	assert.Empty(t, svc.ByClient("u3"))
}

func TestWriteFailure_LeavesStateUnchanged(t *testing.T) {
	logger := common.NewSilentLogger()
	mgr := storage.NewManagerWithBackend(storage.NewMemoryBackend(logger), logger, nil)
	defer mgr.Close()
	ctx := context.Background()

	seeded := []models.Portfolio{{ID: "p1", Name: "Alpha", Holdings: []models.Holding{}}}
	_, err := mgr.Portfolios().SaveAll(ctx, seeded)
	require.NoError(t, err)

	svc := NewService(brokenRepo{mgr.Portfolios()}, logger)
	_, err = svc.FetchAll(ctx)
	require.NoError(t, err)

	var events []models.ChangeEvent
	svc.Subscribe(func(ev models.ChangeEvent) { events = append(events, ev) })

	_, err = svc.Create(ctx, Payload{"name": "Beta"})
	require.ErrorIs(t, err, errWrite)
	assert.Equal(t, seeded, svc.All())
	assert.Equal(t, errWrite.Error(), svc.Error())

	err = svc.Remove(ctx, "p1")
	require.ErrorIs(t, err, errWrite)
	assert.Equal(t, seeded, svc.All())

	require.Len(t, events, 2)
	assert.Equal(t, models.ChangeError, events[0].Kind)
}

func TestGettersReturnCopies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, Payload{"holdings": []any{map[string]any{"symbol": "AAPL"}}})
	require.NoError(t, err)

	all := svc.All()
	all[0].Holdings[0].Symbol = "MUTATED"

	got, _ := svc.ByID(p.ID)
	assert.Equal(t, "AAPL", got.Holdings[0].Symbol)
}

func TestSubscribe_ReceivesEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var kinds []models.ChangeKind
	unsubscribe := svc.Subscribe(func(ev models.ChangeEvent) {
		assert.Equal(t, models.SlicePortfolios, ev.Slice)
		kinds = append(kinds, ev.Kind)
	})

	_, err := svc.FetchAll(ctx)
	require.NoError(t, err)
	p, err := svc.Create(ctx, Payload{"name": "A"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, PayloadFrom(p))
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, p.ID))

	unsubscribe()
	_, err = svc.FetchAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, []models.ChangeKind{
		models.ChangeFetched,
		models.ChangeCreated,
		models.ChangeUpdated,
		models.ChangeRemoved,
	}, kinds)
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
	svc := NewService(mgr.Portfolios(), logger)
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			created, err := svc.Create(ctx, Payload{"name": fmt.Sprintf("Fund %d", i), "clientId": "c1"})
			assert.NoError(t, err)
			if i%2 == 0 {
				assert.NoError(t, svc.Remove(ctx, created.ID))
			}
		}()
	}
	wg.Wait()

	stored, err := mgr.Portfolios().FetchAll(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, n/2)
	assert.Equal(t, stored, svc.All())
}
