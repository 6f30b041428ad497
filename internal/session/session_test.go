package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"feedmart-pos/internal/cart"
	"feedmart-pos/internal/models"
	"feedmart-pos/internal/money"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

var maize = models.Product{ID: 1, Name: "Maize bran", Price: "150.00", CostPrice: "120.00", UnitType: models.UnitBag}

func addMaize(c *cart.Cart) error {
	return c.AddOrIncrement(maize, models.UnitBag, 2)
}

func stores(t *testing.T) map[string]Store {
	_, client := setupTestRedis(t)
	return map[string]Store{
		"redis":  NewRedisStore(client, time.Hour),
		"memory": NewMemoryStore(),
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Load(ctx, 7)
			require.NoError(t, err)
			assert.False(t, ok)

			c := cart.New()
			require.NoError(t, addMaize(c))
			require.NoError(t, store.Save(ctx, 7, c.Snapshot()))

			state, ok, err := store.Load(ctx, 7)
			require.NoError(t, err)
			require.True(t, ok)
			restored := cart.Restore(state)
			assert.Equal(t, 2, restored.ItemCount())
			assert.Equal(t, "300.00", money.Format(restored.Subtotal()))

			require.NoError(t, store.Delete(ctx, 7))
			_, ok, err = store.Load(ctx, 7)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStoreCheckoutLock(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := store.Lock(ctx, 3, "attempt-a", time.Minute)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = store.Lock(ctx, 3, "attempt-b", time.Minute)
			require.NoError(t, err)
			assert.False(t, ok)

			// only the holder can release
			require.NoError(t, store.Unlock(ctx, 3, "attempt-b"))
			holder, err := store.LockHolder(ctx, 3)
			require.NoError(t, err)
			assert.Equal(t, "attempt-a", holder)

			require.NoError(t, store.Unlock(ctx, 3, "attempt-a"))
			holder, err = store.LockHolder(ctx, 3)
			require.NoError(t, err)
			assert.Empty(t, holder)
		})
	}
}

func TestRedisStoreCartExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 9, cart.New().Snapshot()))
	assert.True(t, mr.Exists("pos:cart:9"))

	mr.FastForward(2 * time.Minute)
	_, ok, err := store.Load(ctx, 9)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerMutate(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()

	c, err := m.Mutate(ctx, 1, addMaize)
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount())

	c, err = m.Mutate(ctx, 1, addMaize)
	require.NoError(t, err)
	assert.Equal(t, 4, c.ItemCount())
	assert.Len(t, c.Lines(), 1)

	// failed mutations are not saved
	_, err = m.Mutate(ctx, 1, func(c *cart.Cart) error {
		c.Reset()
		return errors.New("boom")
	})
	require.Error(t, err)
	c, err = m.Load(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, c.ItemCount())

	// other cashiers are isolated
	other, err := m.Load(ctx, 2)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestManagerRefusesMutationDuringCheckout(t *testing.T) {
	m := NewManager(NewMemoryStore())
	ctx := context.Background()
	_, err := m.Mutate(ctx, 1, addMaize)
	require.NoError(t, err)

	err = m.WithCheckout(ctx, 1, "attempt-1", time.Minute, func(c *cart.Cart, reset func() error) error {
		assert.Equal(t, 2, c.ItemCount())

		_, err := m.Mutate(ctx, 1, addMaize)
		assert.ErrorIs(t, err, ErrCheckoutInProgress)

		err = m.WithCheckout(ctx, 1, "attempt-2", time.Minute, func(*cart.Cart, func() error) error {
			return nil
		})
		assert.ErrorIs(t, err, ErrCheckoutInProgress)
		return nil
	})
	require.NoError(t, err)

	// lock released, cart untouched
	c, err := m.Mutate(ctx, 1, addMaize)
	require.NoError(t, err)
	assert.Equal(t, 4, c.ItemCount())
}

func TestManagerCheckoutReset(t *testing.T) {
	_, client := setupTestRedis(t)
	m := NewManager(NewRedisStore(client, time.Hour))
	ctx := context.Background()
	_, err := m.Mutate(ctx, 5, addMaize)
	require.NoError(t, err)

	err = m.WithCheckout(ctx, 5, "attempt-1", time.Minute, func(c *cart.Cart, reset func() error) error {
		return reset()
	})
	require.NoError(t, err)

	c, err := m.Load(ctx, 5)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	holder, err := m.Store().LockHolder(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, holder)
}
