package surrealdb

import (
	"context"
	"testing"

	"github.com/bobmcallan/advisor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db := testDB(t)
	store, err := NewStore(context.Background(), db, testLogger())
	require.NoError(t, err)
	return store
}

func TestStore_GetMissing(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "investment-portfolio-users")
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
}

func TestStore_SetGetDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	key := "investment-portfolio-portfolios"
	value := `[{"id":"p1","clientId":"u1","holdings":[]}]`

	require.NoError(t, store.Set(ctx, key, []byte(value)))
	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, value, string(got))

	require.NoError(t, store.Set(ctx, key, []byte(`[]`)))
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, store.Delete(ctx, key))
	_, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, models.ErrKeyNotFound)
}

func TestStore_MalformedValueRoundTrips(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte(`{not json`)))
	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(got))
}
