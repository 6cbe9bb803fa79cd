package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/fivetwenty-io/cloudrest/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_MemoryCache(t *testing.T) {
	t.Parallel()

	config := &cache.Config{
		Type: cache.TypeMemory,
		Memory: &cache.MemoryConfig{
			MaxSize:         100,
			CleanupInterval: "1m",
		},
	}

	backend, err := cache.NewFromConfig(config)
	require.NoError(t, err)
	require.NotNil(t, backend)

	ctx := context.Background()
	entry := &cache.Entry{
		Data:      []byte("test data"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = backend.Set(ctx, "test-key", entry)
	require.NoError(t, err)

	retrieved, err := backend.Get(ctx, "test-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)

	assert.True(t, backend.Has(ctx, "test-key"))

	err = backend.Delete(ctx, "test-key")
	require.NoError(t, err)
	assert.False(t, backend.Has(ctx, "test-key"))
}

func TestFactory_InvalidCleanupInterval(t *testing.T) {
	t.Parallel()

	_, err := cache.NewFromConfig(&cache.Config{
		Type:   cache.TypeMemory,
		Memory: &cache.MemoryConfig{MaxSize: 1, CleanupInterval: "soon"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cleanup interval")
}

func TestFactory_NoOpCache(t *testing.T) {
	t.Parallel()

	backend, err := cache.NewFromConfig(&cache.Config{Type: cache.TypeNone})
	require.NoError(t, err)
	require.NotNil(t, backend)

	ctx := context.Background()

	err = backend.Set(ctx, "test-key", &cache.Entry{Data: []byte("test data")})
	require.NoError(t, err)

	_, err = backend.Get(ctx, "test-key")
	require.ErrorIs(t, err, cache.ErrCacheDisabled)

	assert.False(t, backend.Has(ctx, "test-key"))
	require.NoError(t, backend.Delete(ctx, "test-key"))
	require.NoError(t, backend.Clear(ctx))
}

func TestFactory_NATSRequiresConfig(t *testing.T) {
	t.Parallel()

	backend, err := cache.NewFromConfig(&cache.Config{Type: cache.TypeNATS})
	require.ErrorIs(t, err, cache.ErrNATSConfigRequired)
	assert.Nil(t, backend)

	backend, err = cache.NewFromConfig(&cache.Config{Type: cache.TypeNATS, NATS: &cache.NATSKVConfig{Bucket: "tokens"}})
	require.ErrorIs(t, err, cache.ErrNATSURLRequired)
	assert.Nil(t, backend)
}

func TestBuilder(t *testing.T) {
	t.Parallel()

	backend, err := cache.NewBuilder().
		WithType(cache.TypeMemory).
		WithMemoryConfig(50, "30s").
		WithOptions(&cache.Options{TTL: 10 * time.Minute}).
		Build()

	require.NoError(t, err)
	require.NotNil(t, backend)

	ctx := context.Background()
	entry := &cache.Entry{Data: []byte("builder test")}

	err = backend.Set(ctx, "builder-key", entry)
	require.NoError(t, err)

	retrieved, err := backend.Get(ctx, "builder-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.False(t, retrieved.ExpiresAt.IsZero())
}

func TestChain(t *testing.T) {
	t.Parallel()

	l1Cache := cache.NewMemoryCache(10)
	l2Cache := cache.NewMemoryCache(100)

	chain := cache.NewChain(l1Cache, l2Cache)

	ctx := context.Background()
	entry := &cache.Entry{
		Data:      []byte("chain test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err := chain.Set(ctx, "chain-key", entry)
	require.NoError(t, err)

	assert.True(t, l1Cache.Has(ctx, "chain-key"))
	assert.True(t, l2Cache.Has(ctx, "chain-key"))

	// Delete from L1 only
	err = l1Cache.Delete(ctx, "chain-key")
	require.NoError(t, err)

	// Get should still work (from L2) and repopulate L1
	retrieved, err := chain.Get(ctx, "chain-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
	assert.True(t, l1Cache.Has(ctx, "chain-key"))

	err = chain.Delete(ctx, "chain-key")
	require.NoError(t, err)
	assert.False(t, l1Cache.Has(ctx, "chain-key"))
	assert.False(t, l2Cache.Has(ctx, "chain-key"))

	_, err = chain.Get(ctx, "chain-key")
	require.ErrorIs(t, err, cache.ErrKeyNotFoundInAnyCache)
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := cache.DefaultConfig()
	assert.Equal(t, cache.TypeMemory, config.Type)
	require.NotNil(t, config.Memory)
	assert.Equal(t, 1000, config.Memory.MaxSize)
	assert.Equal(t, "1m", config.Memory.CleanupInterval)
	assert.NotNil(t, config.Options)
}

func TestFactory_InvalidType(t *testing.T) {
	t.Parallel()

	backend, err := cache.NewFromConfig(&cache.Config{Type: cache.Type("invalid")})
	require.ErrorIs(t, err, cache.ErrUnsupportedType)
	assert.Nil(t, backend)
	assert.Contains(t, err.Error(), "unsupported cache type")
}

func TestFactory_NilConfig(t *testing.T) {
	t.Parallel()

	backend, err := cache.NewFromConfig(nil)
	require.NoError(t, err)
	require.NotNil(t, backend)

	ctx := context.Background()
	entry := &cache.Entry{
		Data:      []byte("default test"),
		ExpiresAt: time.Now().Add(1 * time.Hour),
	}

	err = backend.Set(ctx, "default-key", entry)
	require.NoError(t, err)

	retrieved, err := backend.Get(ctx, "default-key")
	require.NoError(t, err)
	assert.Equal(t, entry.Data, retrieved.Data)
}
