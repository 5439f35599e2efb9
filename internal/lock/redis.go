package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for chest locks
	keyPrefix = "chest:lock:"

	defaultTTL   = 10 * time.Second
	defaultRetry = 25 * time.Millisecond
)

// releaseScript deletes the key only when it still carries our token, so a lock
// that expired and was taken by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a Locker shared by every replica that talks to the same Redis.
// Each key is a SET NX PX entry holding a random token.
type Redis struct {
	client redis.UniversalClient
	ttl    time.Duration
	retry  time.Duration
}

// RedisOption configures a Redis locker.
type RedisOption func(*Redis)

// WithTTL bounds how long a crashed holder can keep a key.
func WithTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// WithRetryInterval sets how often a blocked caller retries.
func WithRetryInterval(d time.Duration) RedisOption {
	return func(r *Redis) { r.retry = d }
}

// NewRedis returns a Redis-backed Locker.
func NewRedis(client redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: defaultTTL, retry: defaultRetry}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Lock acquires every key, retrying until ctx is done.
func (r *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = sortedKeys(keys)
	token := uuid.NewString()
	held := make([]string, 0, len(keys))

	release := func() {
		// release must work even when the caller's ctx is already cancelled
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = releaseScript.Run(rctx, r.client, []string{keyPrefix + held[i]}, token).Err()
		}
	}

	for _, k := range keys {
		if err := r.acquire(ctx, keyPrefix+k, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, k)
	}
	return release, nil
}

func (r *Redis) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		if ok {
			return nil
		}

		t := time.NewTimer(r.retry)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		}
	}
}
