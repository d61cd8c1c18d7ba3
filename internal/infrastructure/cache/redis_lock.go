// Package cache holds the distributed generation lock.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultLockPrefix = "lock:"

// releaseScript deletes the key only while it still holds the caller's token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGenerationLock is a SET NX PX lock shared by every server instance
type RedisGenerationLock struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisGenerationLock creates a lock on an existing client
func NewRedisGenerationLock(client redis.UniversalClient, keyPrefix string) *RedisGenerationLock {
	if keyPrefix == "" {
		keyPrefix = defaultLockPrefix
	}
	return &RedisGenerationLock{client: client, keyPrefix: keyPrefix}
}

// Acquire takes key for ttl
func (l *RedisGenerationLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees key if token still owns it. An expired or stolen lock is left alone.
func (l *RedisGenerationLock) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}
