package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nishadmahmud/apple-nation/internal/domain"
	"github.com/nishadmahmud/apple-nation/internal/storage"
)

const persistTimeout = 5 * time.Second

// Service is the single source of truth for shopping carts. Each browsing
// session owns one cart; the in-memory state is authoritative and every
// mutation is written through to the store asynchronously.
type Service struct {
	store  storage.CartStore
	logger *zap.Logger
	sfg    singleflight.Group // prevents duplicate hydration per session

	mu    sync.Mutex
	carts map[string]*state

	// Persistence runs on a single writer goroutine. Mutations overwrite the
	// session's pending record, so the latest snapshot always wins and writes
	// for a session are ordered.
	dirtyMu sync.Mutex
	dirty   map[string]*storage.CartRecord
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}

	closeOnce sync.Once
}

func NewService(store storage.CartStore, logger *zap.Logger) *Service {
	s := &Service{
		store:  store,
		logger: logger,
		carts:  make(map[string]*state),
		dirty:  make(map[string]*storage.CartRecord),
		wake:   make(chan struct{}, 1),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.writer()
	return s
}

// Get returns the current cart snapshot for a session, hydrating it from the
// store on first touch. Storage failures degrade to an empty hydrated cart;
// they are logged, never surfaced.
func (s *Service) Get(ctx context.Context, sessionID string) Snapshot {
	c := s.hydrate(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.snapshot()
}

func (s *Service) AddItem(ctx context.Context, sessionID string, item domain.LineItem, quantity int) Snapshot {
	c := s.hydrate(ctx, sessionID)

	s.mu.Lock()
	c.addItem(item, quantity)
	snap := c.snapshot()
	s.mu.Unlock()

	s.schedulePersist(sessionID, snap)
	return snap
}

// UpdateQuantity sets a line's quantity, flooring at 1. Unknown keys no-op.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, key string, quantity int) Snapshot {
	c := s.hydrate(ctx, sessionID)

	s.mu.Lock()
	c.updateQuantity(key, quantity)
	snap := c.snapshot()
	s.mu.Unlock()

	s.schedulePersist(sessionID, snap)
	return snap
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, key string) Snapshot {
	c := s.hydrate(ctx, sessionID)

	s.mu.Lock()
	c.removeItem(key)
	snap := c.snapshot()
	s.mu.Unlock()

	s.schedulePersist(sessionID, snap)
	return snap
}

// Clear empties the cart. Triggered after a successful checkout, either via
// the HTTP surface or the checkout event consumer.
func (s *Service) Clear(ctx context.Context, sessionID string) Snapshot {
	c := s.hydrate(ctx, sessionID)

	s.mu.Lock()
	c.clear()
	snap := c.snapshot()
	s.mu.Unlock()

	s.schedulePersist(sessionID, snap)
	return snap
}

// Close flushes pending writes and stops the writer goroutine.
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
		<-s.done
	})
}

func (s *Service) hydrate(ctx context.Context, sessionID string) *state {
	s.mu.Lock()
	if c, ok := s.carts[sessionID]; ok {
		s.mu.Unlock()
		return c
	}
	s.mu.Unlock()

	v, _, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		s.mu.Lock()
		if c, ok := s.carts[sessionID]; ok {
			s.mu.Unlock()
			return c, nil
		}
		s.mu.Unlock()

		c := &state{hydrated: true}
		rec, err := s.store.Load(ctx, sessionID)
		switch {
		case err == nil:
			c.items = rec.Items
		case errors.Is(err, storage.ErrCartNotFound):
			// first visit, start empty
		default:
			// Unreadable store: start empty in-memory, stay available.
			s.logger.Warn("cart load failed, starting empty",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}

		s.mu.Lock()
		s.carts[sessionID] = c
		s.mu.Unlock()
		return c, nil
	})

	return v.(*state)
}

func (s *Service) schedulePersist(sessionID string, snap Snapshot) {
	s.dirtyMu.Lock()
	s.dirty[sessionID] = &storage.CartRecord{Items: snap.Items}
	s.dirtyMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Service) writer() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.quit:
			s.flush()
			return
		}
	}
}

func (s *Service) flush() {
	s.dirtyMu.Lock()
	pending := s.dirty
	s.dirty = make(map[string]*storage.CartRecord)
	s.dirtyMu.Unlock()

	for sessionID, rec := range pending {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		if err := s.store.Save(ctx, sessionID, rec); err != nil {
			s.logger.Warn("cart save failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
		cancel()
	}
}
