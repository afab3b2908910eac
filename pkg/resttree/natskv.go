package resttree

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the NATS JetStream key-value cache backend.
type NATSKVConfig struct {
	// URLs lists NATS server addresses.
	URLs []string `json:"urls" yaml:"urls" mapstructure:"urls"`

	// Bucket is the KV bucket name; created if it does not exist.
	Bucket string `json:"bucket" yaml:"bucket" mapstructure:"bucket"`

	// TTL bounds entry lifetime inside the bucket; zero disables it.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// CredsFile is an optional NATS credentials file.
	CredsFile string `json:"creds_file,omitempty" yaml:"creds_file,omitempty" mapstructure:"creds_file"`
}

// NATSKVCache stores responses in a NATS JetStream KV bucket so that a
// fleet of clients can share one memoized view of a remote service.
type NATSKVCache struct {
	conn *nats.Conn
	kv   nats.KeyValue
}

// NewNATSKVCache connects to NATS and binds (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil || config.Bucket == "" {
		return nil, ErrNATSConfigRequired
	}

	var opts []nats.Option
	if config.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(config.CredsFile))
	}

	conn, err := nats.Connect(strings.Join(config.URLs, ","), opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(config.Bucket)
	if errors.Is(err, nats.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
			Bucket: config.Bucket,
			TTL:    config.TTL,
		})
	}

	if err != nil {
		conn.Close()

		return nil, fmt.Errorf("binding KV bucket %q: %w", config.Bucket, err)
	}

	return &NATSKVCache{conn: conn, kv: kv}, nil
}

// Get retrieves an entry from the bucket.
func (c *NATSKVCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(encodeKVKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, ErrCacheKeyNotFound
		}

		return nil, fmt.Errorf("reading cache key: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.expired() {
		_ = c.kv.Delete(encodeKVKey(key))

		return nil, ErrCacheEntryExpired
	}

	return &entry, nil
}

// Set stores an entry in the bucket.
func (c *NATSKVCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(encodeKVKey(key), data)
	if err != nil {
		return fmt.Errorf("writing cache key: %w", err)
	}

	return nil
}

// Delete removes an entry; a missing key is not an error.
func (c *NATSKVCache) Delete(_ context.Context, key string) error {
	err := c.kv.Delete(encodeKVKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache key: %w", err)
	}

	return nil
}

// Clear purges every key in the bucket.
func (c *NATSKVCache) Clear(_ context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing cache keys: %w", err)
	}

	for _, key := range keys {
		err := c.kv.Purge(key)
		if err != nil {
			return fmt.Errorf("purging cache key: %w", err)
		}
	}

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close releases the NATS connection.
func (c *NATSKVCache) Close() {
	c.conn.Close()
}

// encodeKVKey maps an arbitrary cache key onto the restricted NATS KV
// key charset.
func encodeKVKey(key string) string {
	sum := sha256.Sum256([]byte(key))

	return hex.EncodeToString(sum[:])
}
