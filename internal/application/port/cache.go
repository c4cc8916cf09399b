package port

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned by Cache.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache miss")

// Cache is a JSON value cache with a store-wide TTL
type Cache interface {
	// Get decodes the cached value into dest or returns ErrCacheMiss
	Get(ctx context.Context, key string, dest interface{}) error

	Set(ctx context.Context, key string, value interface{}) error

	Delete(ctx context.Context, key string) error

	// DeletePattern removes all keys matching a glob pattern
	DeletePattern(ctx context.Context, pattern string) error

	Close() error
}
