package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
)

// Type represents the type of cache backend.
type Type string

const (
	// TypeMemory represents in-memory cache.
	TypeMemory Type = "memory"

	// TypeNATS represents NATS KV cache.
	TypeNATS Type = "nats"

	// TypeNone represents no caching.
	TypeNone Type = "none"
)

// Static errors for err113 compliance.
var (
	ErrNATSConfigRequired = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedType    = errors.New("unsupported cache type")
)

// Config configures a cache backend.
type Config struct {
	// Type is the cache backend type
	Type Type

	// Memory cache configuration. With TypeNATS it adds a local front to the bucket.
	Memory *MemoryConfig

	// NATS KV cache configuration
	NATS *NATSKVConfig

	// Options applied to any backend. If nil, DefaultOptions() is used.
	Options *Options
}

// MemoryConfig configures memory cache.
type MemoryConfig struct {
	// MaxSize is the maximum number of items in the cache
	MaxSize int

	// CleanupInterval is the interval for cleaning up expired entries
	CleanupInterval string // Duration string like "1m", "5s"
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		TTL:          constants.DefaultCacheTTL,
		MaxValueSize: constants.MaxCacheValueSize,
	}
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() *Config {
	return &Config{
		Type: TypeMemory,
		Memory: &MemoryConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: "1m",
		},
		Options: DefaultOptions(),
	}
}

// NewFromConfig creates a cache backend from configuration.
func NewFromConfig(config *Config) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	options := config.Options
	if options == nil {
		options = DefaultOptions()
	}

	switch config.Type {
	case TypeMemory:
		memory, err := NewMemoryCacheFromConfig(config.Memory, options)
		if err != nil {
			return nil, err
		}

		return memory, nil

	case TypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		natsConfig := *config.NATS
		if natsConfig.TTL == 0 {
			natsConfig.TTL = options.TTL
		}

		kv, err := NewNATSKVCache(&natsConfig)
		if err != nil {
			return nil, err
		}

		if config.Memory == nil {
			return kv, nil
		}

		// A memory front keeps repeat lookups off the bucket.
		memory, err := NewMemoryCacheFromConfig(config.Memory, options)
		if err != nil {
			kv.Close()

			return nil, err
		}

		return NewChain(memory, kv), nil

	case TypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, config.Type)
	}
}

// NewMemoryCacheFromConfig creates a memory cache from configuration.
func NewMemoryCacheFromConfig(config *MemoryConfig, options *Options) (*MemoryCache, error) {
	if config == nil {
		config = &MemoryConfig{
			MaxSize:         constants.DefaultCacheSize,
			CleanupInterval: "1m",
		}
	}

	cache := NewMemoryCache(config.MaxSize)

	if config.CleanupInterval != "" {
		interval, err := time.ParseDuration(config.CleanupInterval)
		if err != nil {
			return nil, fmt.Errorf("invalid cleanup interval %q: %w", config.CleanupInterval, err)
		}

		cache.cleanupInterval = interval
	}

	if options != nil {
		cache.options = *options
	}

	return cache, nil
}

// NoOpCache is a cache that does nothing (no caching).
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get always returns an error (nothing cached).
func (c *NoOpCache) Get(ctx context.Context, key string) (*Entry, error) {
	return nil, ErrCacheDisabled
}

// Set does nothing.
func (c *NoOpCache) Set(ctx context.Context, key string, entry *Entry) error {
	return nil
}

// Delete does nothing.
func (c *NoOpCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Clear does nothing.
func (c *NoOpCache) Clear(ctx context.Context) error {
	return nil
}

// Has always returns false.
func (c *NoOpCache) Has(ctx context.Context, key string) bool {
	return false
}

// Builder helps build cache configurations.
type Builder struct {
	config *Config
}

// NewBuilder creates a new cache builder.
func NewBuilder() *Builder {
	return &Builder{
		config: &Config{
			Type:    TypeMemory,
			Options: DefaultOptions(),
		},
	}
}

// WithType sets the cache type.
func (b *Builder) WithType(cacheType Type) *Builder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig sets memory cache configuration.
func (b *Builder) WithMemoryConfig(maxSize int, cleanupInterval string) *Builder {
	b.config.Memory = &MemoryConfig{
		MaxSize:         maxSize,
		CleanupInterval: cleanupInterval,
	}

	return b
}

// WithNATSConfig sets NATS cache configuration.
func (b *Builder) WithNATSConfig(config *NATSKVConfig) *Builder {
	b.config.NATS = config

	return b
}

// WithOptions sets cache options.
func (b *Builder) WithOptions(options *Options) *Builder {
	b.config.Options = options

	return b
}

// Build creates the cache from the configuration.
func (b *Builder) Build() (Cache, error) {
	return NewFromConfig(b.config)
}

// Chain implements a chain of cache backends (L1, L2, etc.)
type Chain struct {
	caches []Cache
}

// NewChain creates a new cache chain.
func NewChain(caches ...Cache) *Chain {
	return &Chain{
		caches: caches,
	}
}

// Get retrieves an item from the cache chain.
func (c *Chain) Get(ctx context.Context, key string) (*Entry, error) {
	for i, cache := range c.caches {
		entry, err := cache.Get(ctx, key)
		if err == nil {
			// Found in this cache, populate earlier caches
			for j := range i {
				_ = c.caches[j].Set(ctx, key, entry)
			}

			return entry, nil
		}
	}

	return nil, ErrKeyNotFoundInAnyCache
}

// Set stores an item in all caches.
func (c *Chain) Set(ctx context.Context, key string, entry *Entry) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Set(ctx, key, entry)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Delete removes an item from all caches.
func (c *Chain) Delete(ctx context.Context, key string) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Delete(ctx, key)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Clear removes all items from all caches.
func (c *Chain) Clear(ctx context.Context) error {
	var errs []error

	for _, cache := range c.caches {
		err := cache.Clear(ctx)
		if err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Has checks if a key exists in any cache.
func (c *Chain) Has(ctx context.Context, key string) bool {
	for _, cache := range c.caches {
		if cache.Has(ctx, key) {
			return true
		}
	}

	return false
}
