// Package idempotency remembers which booking an Idempotency-Key created so a
// retried POST returns the original booking instead of a second one.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store maps idempotency keys to booking ids.
type Store interface {
	// Lookup returns the booking id recorded for key, if any.
	Lookup(ctx context.Context, key string) (bookingID string, found bool, err error)
	// Remember records the booking id created for key.
	Remember(ctx context.Context, key, bookingID string) error
}

// Noop records nothing; every request is treated as new.
type Noop struct{}

func (Noop) Lookup(context.Context, string) (string, bool, error) { return "", false, nil }

func (Noop) Remember(context.Context, string, string) error { return nil }

// Redis keeps keys in Redis with an expiry.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed Store.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return "idempotency:" + key
}

func (r *Redis) Lookup(ctx context.Context, key string) (string, bool, error) {
	id, err := r.client.Get(ctx, redisKey(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup idempotency key: %w", err)
	}
	return id, true, nil
}

func (r *Redis) Remember(ctx context.Context, key, bookingID string) error {
	if err := r.client.Set(ctx, redisKey(key), bookingID, r.ttl).Err(); err != nil {
		return fmt.Errorf("remember idempotency key: %w", err)
	}
	return nil
}
