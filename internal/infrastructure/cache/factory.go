package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/practice/backend/internal/application/practice"
	"github.com/practice/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// NewGenerationLock returns a Redis lock when Redis is enabled and reachable, and a
// process-local lock otherwise. The returned close func releases the client.
func NewGenerationLock(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (practice.GenerationLock, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Info("redis disabled, using in-memory generation lock")
		return NewInMemoryGenerationLock(), func() error { return nil }, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}

	logger.Info("using redis generation lock", zap.String("addr", cfg.Addr()))
	return NewRedisGenerationLock(client, "practice:"), client.Close, nil
}

var (
	_ practice.GenerationLock = (*RedisGenerationLock)(nil)
	_ practice.GenerationLock = (*InMemoryGenerationLock)(nil)
)
