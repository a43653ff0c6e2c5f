package cart

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nishadmahmud/apple-nation/internal/domain"
	"github.com/nishadmahmud/apple-nation/internal/storage"
)

type mockStore struct {
	m       sync.RWMutex
	recs    map[string]*storage.CartRecord
	loadErr error
	saveErr error
	saves   int
}

func newMockStore() *mockStore {
	return &mockStore{recs: make(map[string]*storage.CartRecord)}
}

func (m *mockStore) Load(_ context.Context, sessionID string) (*storage.CartRecord, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	rec, ok := m.recs[sessionID]
	if !ok {
		return nil, storage.ErrCartNotFound
	}
	return rec, nil
}

func (m *mockStore) Save(_ context.Context, sessionID string, rec *storage.CartRecord) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.recs[sessionID] = rec
	return nil
}

func (m *mockStore) Delete(_ context.Context, sessionID string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.recs, sessionID)
	return nil
}

func (m *mockStore) record(sessionID string) *storage.CartRecord {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.recs[sessionID]
}

func TestGet_FirstVisitIsEmptyAndHydrated(t *testing.T) {
	sut := NewService(newMockStore(), zap.NewNop())
	defer sut.Close()

	snap := sut.Get(context.Background(), "s1")
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Hydrated)
}

func TestGet_HydratesPersistedItems(t *testing.T) {
	store := newMockStore()
	store.recs["s1"] = &storage.CartRecord{Items: []domain.LineItem{
		{Key: "A", ProductID: "A", Name: "iPhone", Price: 100, Quantity: 2},
	}}

	sut := NewService(store, zap.NewNop())
	defer sut.Close()

	snap := sut.Get(context.Background(), "s1")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 200.0, snap.Subtotal)
	assert.Equal(t, 2, snap.Count)
	assert.True(t, snap.Hydrated)
}

func TestGet_LoadFailureDegradesToEmptyCart(t *testing.T) {
	store := newMockStore()
	store.loadErr = fmt.Errorf("storage unavailable")

	sut := NewService(store, zap.NewNop())
	defer sut.Close()

	snap := sut.Get(context.Background(), "s1")
	assert.Empty(t, snap.Items)
	assert.True(t, snap.Hydrated)
}

func TestAddItem_PersistsAsynchronously(t *testing.T) {
	store := newMockStore()
	sut := NewService(store, zap.NewNop())
	defer sut.Close()

	snap := sut.AddItem(context.Background(), "s1", domain.LineItem{
		ProductID: "A", Name: "iPhone", Price: 999,
	}, 1)
	assert.Equal(t, 999.0, snap.Subtotal)

	require.Eventually(t, func() bool {
		rec := store.record("s1")
		return rec != nil && len(rec.Items) == 1
	}, 100*time.Millisecond, 10*time.Millisecond, "cart was not persisted")
}

func TestAddItem_SaveFailureDoesNotAffectInMemoryState(t *testing.T) {
	store := newMockStore()
	store.saveErr = fmt.Errorf("quota exceeded")

	sut := NewService(store, zap.NewNop())
	defer sut.Close()

	sut.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "A", Name: "iPhone", Price: 10}, 2)
	snap := sut.Get(context.Background(), "s1")

	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)
}

func TestRoundTrip_PersistAndRehydrate(t *testing.T) {
	store := newMockStore()

	first := NewService(store, zap.NewNop())
	first.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "A", Name: "iPhone", Price: 100}, 2)
	first.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "B", VariantID: "v1", Name: "Case", Price: 50}, 1)
	before := first.Get(context.Background(), "s1")
	first.Close() // flushes pending writes

	second := NewService(store, zap.NewNop())
	defer second.Close()
	after := second.Get(context.Background(), "s1")

	assert.Equal(t, before.Items, after.Items)
	assert.Equal(t, before.Subtotal, after.Subtotal)
	assert.Equal(t, before.Count, after.Count)
}

func TestPersistence_LastWriteWins(t *testing.T) {
	store := newMockStore()
	sut := NewService(store, zap.NewNop())

	sut.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "A", Name: "iPhone", Price: 10}, 1)
	sut.UpdateQuantity(context.Background(), "s1", "A", 5)
	sut.UpdateQuantity(context.Background(), "s1", "A", 3)
	sut.Close()

	rec := store.record("s1")
	require.NotNil(t, rec)
	require.Len(t, rec.Items, 1)
	assert.Equal(t, 3, rec.Items[0].Quantity)
}

func TestClear_EmptiesAndPersists(t *testing.T) {
	store := newMockStore()
	sut := NewService(store, zap.NewNop())

	sut.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "A", Name: "iPhone", Price: 10}, 1)
	snap := sut.Clear(context.Background(), "s1")
	sut.Close()

	assert.Empty(t, snap.Items)
	rec := store.record("s1")
	require.NotNil(t, rec)
	assert.Empty(t, rec.Items)
}

func TestConcurrentMutations_AreSerialized(t *testing.T) {
	store := newMockStore()
	sut := NewService(store, zap.NewNop())
	defer sut.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sut.AddItem(context.Background(), "s1", domain.LineItem{ProductID: "A", Name: "iPhone", Price: 1}, 1)
		}()
	}
	wg.Wait()

	snap := sut.Get(context.Background(), "s1")
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 50, snap.Items[0].Quantity)
	assert.Equal(t, 50.0, snap.Subtotal)
}
