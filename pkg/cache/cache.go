// Package cache stores short-lived values, such as OAuth2 access tokens,
// that several clients or processes may share.
package cache

import (
	"context"
	"errors"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrKeyNotFound           = errors.New("key not found")
	ErrEntryExpired          = errors.New("entry expired")
	ErrCacheDisabled         = errors.New("cache disabled")
	ErrKeyNotFoundInAnyCache = errors.New("key not found in any cache")
	ErrValueTooLarge         = errors.New("cached value too large")
)

// Entry is a cached value.
type Entry struct {
	Data []byte `json:"data"`
	// ExpiresAt of zero means the backend default TTL applies.
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry has passed its expiry.
func (e *Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Cache is implemented by every backend.
type Cache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// Options apply to any backend.
type Options struct {
	// TTL is used for entries set without an expiry.
	TTL time.Duration

	// MaxValueSize rejects larger values on Set; zero disables the check.
	MaxValueSize int
}
