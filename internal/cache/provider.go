// Package cache provides caching for upstream product snapshots.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Provider stores JSON-encoded catalog product snapshots keyed by shop and
// product id. Cached snapshots are immutable inputs: the engine never writes
// back into a cached value, so a hit can be decoded and used concurrently.
type Provider interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Config struct {
	Provider              string
	RedisConnectionString string
}

func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "memory", "":
		return NewMemoryProvider()
	case "redis":
		return NewRedisProvider(cfg.RedisConnectionString)
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", cfg.Provider)
	}
}

func ProductKey(shopID, productID string) string {
	return fmt.Sprintf("product:%s:%s", shopID, productID)
}
