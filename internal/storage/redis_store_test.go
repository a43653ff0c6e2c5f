package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// setupTestRedis creates a miniredis server and returns a RedisStore instance
func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis, func()) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	store := NewRedisStore(client)

	cleanup := func() {
		client.Close()
		mr.Close()
	}

	return store, mr, cleanup
}

func TestLoad_Success(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	rec := &CartRecord{Items: []domain.LineItem{
		{Key: "A", ProductID: "A", Name: "iPhone", Price: 100, Quantity: 2},
		{Key: "B:v1", ProductID: "B", VariantID: "v1", Name: "Case", Price: 50, Quantity: 1},
	}}
	data, _ := json.Marshal(rec)
	mr.Set(storeKey("s1"), string(data))

	got, err := store.Load(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, "A", got.Items[0].Key)
	assert.Equal(t, "B:v1", got.Items[1].Key)
}

func TestLoad_NotFound(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	got, err := store.Load(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, got)
}

func TestLoad_CorruptJSON(t *testing.T) {
	store, mr, cleanup := setupTestRedis(t)
	defer cleanup()

	mr.Set(storeKey("s1"), "{not json")

	got, err := store.Load(context.Background(), "s1")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestSaveThenLoad_RoundTrip(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	rec := &CartRecord{Items: []domain.LineItem{
		{Key: "A", ProductID: "A", Name: "iPhone", Price: 999.5, Quantity: 3,
			Attributes: map[string]string{"color": "black", "storage": "256GB"}},
	}}

	require.NoError(t, store.Save(ctx, "s1", rec))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.Items, got.Items)
}

func TestDelete_RemovesRecord(t *testing.T) {
	store, _, cleanup := setupTestRedis(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", &CartRecord{}))
	require.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	rec := &CartRecord{Items: []domain.LineItem{{Key: "A", ProductID: "A", Name: "iPhone", Quantity: 1}}}
	require.NoError(t, store.Save(ctx, "s1", rec))

	got, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, rec.Items, got.Items)

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
