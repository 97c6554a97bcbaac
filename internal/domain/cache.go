package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations. Backed by a
// local LRU (Community) or Redis (Pro). The velocity service uses the
// windowed counters; implementations must tolerate concurrent writers.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// IncrementCounter atomically increments a counter and returns the
	// new value. The counter expires after the window elapses. Used
	// for 24h recent-transaction counts.
	IncrementCounter(ctx context.Context, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}
