package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/cloudrest/internal/constants"
	"github.com/nats-io/nats.go"
)

// Static errors for err113 compliance.
var (
	ErrNATSURLRequired = errors.New("NATS URL or connection required")
)

// NATSKVConfig configures the NATS JetStream key-value backend.
type NATSKVConfig struct {
	// URL of the NATS server; ignored when Conn is set.
	URL string

	// Conn reuses an existing connection. The cache does not close it.
	Conn *nats.Conn

	// Bucket is created on first use if it does not exist.
	Bucket string

	// TTL is the bucket-wide maximum age of values.
	TTL time.Duration

	// ConnectTimeout bounds the initial connection.
	ConnectTimeout time.Duration
}

// NATSKVCache shares entries between processes through a JetStream KV
// bucket. Keys are hashed so that any string can be used.
type NATSKVCache struct {
	kv       nats.KeyValue
	conn     *nats.Conn
	ownsConn bool
	options  Options
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		if config.URL == "" {
			return nil, ErrNATSURLRequired
		}

		timeout := config.ConnectTimeout
		if timeout <= 0 {
			timeout = constants.ShortHTTPTimeout
		}

		var err error

		conn, err = nats.Connect(config.URL, nats.Name("cloudrest"), nats.Timeout(timeout))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	kv, err := openBucket(conn, config)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	return &NATSKVCache{
		kv:       kv,
		conn:     conn,
		ownsConn: ownsConn,
		options:  Options{TTL: config.TTL, MaxValueSize: constants.MaxCacheValueSize},
	}, nil
}

func openBucket(conn *nats.Conn, config *NATSKVConfig) (nats.KeyValue, error) {
	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultTokenBucket
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket:       bucket,
			Description:  "cloudrest shared cache",
			TTL:          config.TTL,
			MaxValueSize: constants.MaxCacheValueSize,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("opening KV bucket %s: %w", bucket, err)
	}

	return kv, nil
}

// Get fetches and decodes the entry for key.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*Entry, error) {
	kvEntry, err := c.kv.Get(natsKey(key))
	if errors.Is(err, nats.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}

	if err != nil {
		return nil, fmt.Errorf("reading %s from NATS KV: %w", key, err)
	}

	var entry Entry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cached entry %s: %w", key, err)
	}

	if entry.Expired(time.Now()) {
		_ = c.Delete(ctx, key)

		return nil, fmt.Errorf("%w: %s", ErrEntryExpired, key)
	}

	return &entry, nil
}

// Set encodes and stores entry under key.
func (c *NATSKVCache) Set(_ context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	if c.options.MaxValueSize > 0 && len(data) > c.options.MaxValueSize {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(data))
	}

	_, err = c.kv.Put(natsKey(key), data)
	if err != nil {
		return fmt.Errorf("writing %s to NATS KV: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
	}

	return nil
}

// Clear deletes every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys(nats.Context(ctx))
	if errors.Is(err, nats.ErrNoKeysFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("listing NATS KV keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Delete(key)
		if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
			return fmt.Errorf("deleting %s from NATS KV: %w", key, err)
		}
	}

	return nil
}

// Has reports whether an unexpired entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the connection if the cache opened it.
func (c *NATSKVCache) Close() {
	if c.ownsConn {
		c.conn.Close()
	}
}

// natsKey maps an arbitrary key onto the KV key alphabet.
func natsKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return "k." + hex.EncodeToString(sum[:])
}
