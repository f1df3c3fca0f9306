package cache

import (
	"context"
	"testing"
	"time"

	"cosmetics_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCartStore_SaveGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCartStore()

	empty, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)

	cart := models.Cart{UserID: "u1", Items: []models.CartItem{{ProductID: "p1", Quantity: 2, Price: 10}}}
	require.NoError(t, store.Save(ctx, cart))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items, got.Items)

	require.NoError(t, store.Clear(ctx, "u1"))
	got, _ = store.Get(ctx, "u1")
	assert.Empty(t, got.Items)
}

func TestMemoryCartStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryCartStore()

	events, unsubscribe, err := store.Subscribe(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, models.Cart{UserID: "u1"}))
	require.NoError(t, store.Save(ctx, models.Cart{UserID: "other"}))
	require.NoError(t, store.Clear(ctx, "u1"))

	assert.Equal(t, CartUpdated, <-events)
	assert.Equal(t, CartCleared, <-events)

	unsubscribe()
	unsubscribe()
	_, open := <-events
	assert.False(t, open)

	// plus d'abonné : la publication ne bloque pas
	require.NoError(t, store.Save(ctx, models.Cart{UserID: "u1"}))
}

func TestMemoryCounter_FixedWindow(t *testing.T) {
	ctx := context.Background()
	counter := NewMemoryCounter()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	counter.now = func() time.Time { return now }

	for i := 1; i <= 3; i++ {
		n, err := counter.Incr(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}

	now = now.Add(59 * time.Second)
	n, _ := counter.Get(ctx, "k")
	assert.Equal(t, int64(3), n)

	now = now.Add(time.Second)
	n, _ = counter.Get(ctx, "k")
	assert.Zero(t, n)

	n, _ = counter.Incr(ctx, "k", time.Minute)
	assert.Equal(t, int64(1), n)

	require.NoError(t, counter.Reset(ctx, "k"))
	n, _ = counter.Get(ctx, "k")
	assert.Zero(t, n)
}

func TestMemoryBlacklist(t *testing.T) {
	ctx := context.Background()
	bl := NewMemoryBlacklist()

	require.NoError(t, bl.Revoke(ctx, "jti-1", time.Hour))
	require.NoError(t, bl.Revoke(ctx, "jti-expired", 0))

	revoked, err := bl.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, _ = bl.IsRevoked(ctx, "jti-expired")
	assert.False(t, revoked)
}

func TestMemoryProductCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryProductCache()
	p := models.Product{ID: gocql.TimeUUID(), Name: "Baume"}

	_, ok := c.Get(ctx, p.ID.String())
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, p))
	got, ok := c.Get(ctx, p.ID.String())
	require.True(t, ok)
	assert.Equal(t, "Baume", got.Name)

	require.NoError(t, c.Delete(ctx, p.ID.String()))
	_, ok = c.Get(ctx, p.ID.String())
	assert.False(t, ok)
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "cart:42", cartKey("42"))
	assert.Equal(t, "blacklist:abc", blacklistKey("abc"))
	assert.Equal(t, "product:xyz", productKey("xyz"))
}
