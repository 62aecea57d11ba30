// Package cache stores rendered artifacts so that unchanged drawings are not
// laid out twice.
//
// Four backends implement [Cache]: [FileCache] for the CLI, [MemoryCache]
// for a single preview server, [RedisCache] for previews shared by several
// processes and [NullCache] when caching is disabled.
// [Open] builds one from [Options].
//
// Keys come from a [Keyer]. Artifact keys hash the DOT source together with
// the layout engine and output format, so any change to the graph, the view
// or the style yields a new key.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Cache is a byte store with optional per-entry expiry.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Dir           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// MemoryEntries bounds the memory backend; zero means
	// DefaultMemoryEntries.
	MemoryEntries int
}

// Open creates the cache backend named by opts.Backend. An empty backend
// selects the file cache in [DefaultDir].
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		fc, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	case BackendMemory:
		mc, err := NewMemoryCache(opts.MemoryEntries)
		if err != nil {
			return nil, err
		}
		return mc, nil
	case BackendRedis:
		rc, err := NewRedisCache(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendNone:
		return NewNullCache(), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q (want file, memory, redis or none)", opts.Backend)
}

// NullCache never stores anything. It backs --no-cache and the "none"
// backend.
type NullCache struct{}

func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error { return nil }
func (NullCache) Close() error { return nil }

// DefaultDir returns the per-user cache directory for rendered artifacts.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locate user cache dir: %w", err)
	}
	return filepath.Join(base, "cybergraph"), nil
}
