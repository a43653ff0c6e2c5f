package storage

import (
	"context"
	"errors"

	"github.com/nishadmahmud/apple-nation/internal/domain"
)

// CartRecord is the persisted shape: a single serialized record per session.
type CartRecord struct {
	Items []domain.LineItem `json:"items"`
}

// CartStore defines the persistence adapter for cart state.
// Consumers define this interface, not the Redis implementation.
type CartStore interface {
	Load(ctx context.Context, sessionID string) (*CartRecord, error)
	Save(ctx context.Context, sessionID string, rec *CartRecord) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCartNotFound = errors.New("cart not found")
