package storage

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriconnect/whatsapp-backend/internal/models"
)

func draftSession(userID string) *models.Session {
	qty := 50
	s := models.NewSession(userID)
	s.State = models.StateAddProductPrice
	s.Draft = &models.DraftProduct{Name: "Tomatoes", QuantityAvailable: &qty}
	return s
}

func TestMemorySessionStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	_, err := store.Get(ctx, "+1555")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	s := draftSession("+1555")
	require.NoError(t, store.Set(ctx, s))

	// mutating the caller's copy must not leak into the store
	*s.Draft.QuantityAvailable = 99
	s.State = models.StateInitial

	got, err := store.Get(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, models.StateAddProductPrice, got.State)
	assert.Equal(t, 50, *got.Draft.QuantityAvailable)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemorySessionStoreRejectsEmptyUser(t *testing.T) {
	store := NewMemorySessionStore()
	assert.Error(t, store.Set(context.Background(), &models.Session{}))
	assert.Error(t, store.Set(context.Background(), nil))
}

func TestMemorySessionStoreSweep(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	stale := models.NewSession("+1")
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	fresh := models.NewSession("+2")
	require.NoError(t, store.Set(ctx, stale))
	require.NoError(t, store.Set(ctx, fresh))

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "+1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.Get(ctx, "+2")
	assert.NoError(t, err)
}

func TestRedisSessionStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, 30*time.Minute)
	ctx := context.Background()

	_, err := store.Get(ctx, "+1555")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Set(ctx, draftSession("+1555")))

	got, err := store.Get(ctx, "+1555")
	require.NoError(t, err)
	assert.Equal(t, models.StateAddProductPrice, got.State)
	require.NotNil(t, got.Draft)
	assert.Equal(t, "Tomatoes", got.Draft.Name)
	assert.Equal(t, 50, *got.Draft.QuantityAvailable)
	assert.Nil(t, got.Draft.PricePerUnit)

	assert.Equal(t, 30*time.Minute, mr.TTL(sessionKey("+1555")))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mr.FastForward(31 * time.Minute)
	_, err = store.Get(ctx, "+1555")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisSessionStoreWithoutTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, 0)

	require.NoError(t, store.Set(context.Background(), models.NewSession("+44")))
	assert.Equal(t, time.Duration(0), mr.TTL(sessionKey("+44")))
}

func TestRedisSessionStoreCorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewRedisSessionStore(client, 0)
	require.NoError(t, mr.Set(sessionKey("+9"), "{not json"))

	_, err := store.Get(context.Background(), "+9")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)
}
