package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/crmkit/crm-authz/internal/config"
)

const identityCachePingTimeout = 2 * time.Second

// ErrIdentityCacheDisabled is returned by Ping when no Redis address was given.
var ErrIdentityCacheDisabled = errors.New("identity cache disabled")

// IdentityCache owns the Redis client holding cached identities. A nil Client
// means every snapshot is read from the directory.
type IdentityCache struct {
	Client *redis.Client
}

// OpenIdentityCache builds the client. An unreachable server is logged, not
// fatal; the resolver falls back to the directory on every cache error.
func OpenIdentityCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *IdentityCache {
	logger = logger.Named("identity_cache")
	if cfg.Addr == "" {
		logger.Warn("no redis address; identities are read from the directory on every request")
		return &IdentityCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, identityCachePingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("identity cache unreachable; serving from the directory", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("identity cache connected", zap.String("addr", cfg.Addr), zap.Int("db", cfg.DB))
	}
	return &IdentityCache{Client: client}
}

// Close closes the client.
func (c *IdentityCache) Close() {
	if c != nil && c.Client != nil {
		_ = c.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (c *IdentityCache) Ping(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return ErrIdentityCacheDisabled
	}
	return c.Client.Ping(ctx).Err()
}
