package kv

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chronochat/internal/config"
	"github.com/redis/go-redis/v9"
)

// Open returns the backend selected by cfg.StoreType.
func Open(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.StoreType {
	case config.StoreSQLite:
		return OpenSQLite(ctx, cfg.DatabasePath())
	case config.StoreMemory:
		return NewMemoryRepository(), nil
	case config.StoreRedis:
		return OpenRedis(ctx, &redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
	}
}
