package cache

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryCache is an in-process cache bounded by entry count. When full, the
// entry closest to expiry is evicted.
type MemoryCache struct {
	mu              sync.RWMutex
	entries         map[string]*Entry
	maxSize         int
	options         Options
	cleanupInterval time.Duration
	lastCleanup     time.Time
	now             func() time.Time
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns a copy of the entry stored under key.
func (c *MemoryCache) Get(_ context.Context, key string) (*Entry, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if entry.Expired(c.now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return copyEntry(entry), nil
}

// Set stores a copy of entry.
func (c *MemoryCache) Set(_ context.Context, key string, entry *Entry) error {
	if c.options.MaxValueSize > 0 && len(entry.Data) > c.options.MaxValueSize {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(entry.Data))
	}

	stored := copyEntry(entry)
	if stored.ExpiresAt.IsZero() && c.options.TTL > 0 {
		stored.ExpiresAt = c.now().Add(c.options.TTL)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cleanupInterval > 0 && c.now().Sub(c.lastCleanup) >= c.cleanupInterval {
		c.cleanupLocked()
	}

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictLocked()
	}

	c.entries[key] = stored

	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)

	return nil
}

// Clear removes every entry.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*Entry)

	return nil
}

// Has reports whether an unexpired entry exists for key.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Len returns the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Cleanup drops expired entries.
func (c *MemoryCache) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
}

func (c *MemoryCache) cleanupLocked() {
	now := c.now()

	for key, entry := range c.entries {
		if entry.Expired(now) {
			delete(c.entries, key)
		}
	}

	c.lastCleanup = now
}

func (c *MemoryCache) evictLocked() {
	var (
		victim   string
		earliest time.Time
		found    bool
	)

	for key, entry := range c.entries {
		// entries without expiry are evicted first
		if !found || entry.ExpiresAt.Before(earliest) {
			victim, earliest, found = key, entry.ExpiresAt, true
		}
	}

	if found {
		delete(c.entries, victim)
	}
}

func copyEntry(entry *Entry) *Entry {
	return &Entry{
		Data:      append([]byte(nil), entry.Data...),
		ExpiresAt: entry.ExpiresAt,
	}
}
