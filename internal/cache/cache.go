package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient opens a Redis connection and verifies connectivity.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// entry wraps a cached value with its owning user, which the API JSON of the
// value itself deliberately omits.
type entry[T any] struct {
	OwnerID string `json:"ownerId"`
	Value   T      `json:"value"`
}

// ViewCache is a JSON-backed Redis cache for read projections. Cache failures
// are logged and never surfaced; a miss just falls through to the database.
type ViewCache[T any] struct {
	client *redis.Client
	ttl    time.Duration
}

// NewViewCache creates a ViewCache with the given TTL (0 means no expiry).
func NewViewCache[T any](client *redis.Client, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{client: client, ttl: ttl}
}

// Get retrieves a cached value and the user that owns it.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, string, bool) {
	if c == nil || c.client == nil {
		return nil, "", false
	}
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return nil, "", false
	}
	var e entry[T]
	if err := json.Unmarshal([]byte(data), &e); err != nil {
		return nil, "", false
	}
	return &e.Value, e.OwnerID, true
}

// Set stores a value under key together with its owner.
func (c *ViewCache[T]) Set(ctx context.Context, key, ownerID string, value *T) {
	if c == nil || c.client == nil {
		return
	}
	data, err := json.Marshal(entry[T]{OwnerID: ownerID, Value: *value})
	if err != nil {
		log.Printf("cache: marshal error for key %s: %v", key, err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("cache: write error for key %s: %v", key, err)
	}
}

// Delete removes a key.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("cache: delete error for key %s: %v", key, err)
	}
}
