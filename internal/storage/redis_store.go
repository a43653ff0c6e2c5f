package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    30 * 24 * time.Hour,
	}
}

// RedisStore keeps each session's cart as one JSON record under one key.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*CartRecord, error) {
	data, err := r.client.Get(ctx, storeKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var rec CartRecord
	if err2 := json.Unmarshal(data, &rec); err2 != nil {
		// Corrupt record, treat as absent so the engine starts empty.
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &rec, nil
}

func (r *RedisStore) Save(ctx context.Context, sessionID string, rec *CartRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, storeKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, storeKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storeKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
