package lock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Redis is a Locker shared by every process talking to the same Redis,
// built on SET NX PX with a per-holder token.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis constructs a Redis locker. ttl bounds how long a crashed holder
// can block others. The lock is not extended, so a holder must finish its
// availability scan and write within ttl; an expired lock is logged on release.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	redisKey := "lock:" + key

	for {
		ok, err := r.client.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.retry):
		}
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		released, err := releaseScript.Run(ctx, r.client, []string{redisKey}, token).Int()
		if err != nil {
			log.Printf("release lock %s: %v", key, err)
			return
		}
		if released == 0 {
			log.Printf("lock %s expired after %s before release; another holder may have overlapped", key, r.ttl)
		}
	}, nil
}
