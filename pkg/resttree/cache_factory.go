package resttree

import (
	"context"
	"fmt"
	"time"

	"github.com/resttree-io/resttree/internal/constants"
)

// CacheType selects a cache backend.
type CacheType string

const (
	// CacheTypeMemory is the bounded in-process backend.
	CacheTypeMemory CacheType = "memory"

	// CacheTypeNATS is the NATS JetStream KV backend, shared across
	// processes.
	CacheTypeNATS CacheType = "nats"

	// CacheTypeNone disables caching entirely.
	CacheTypeNone CacheType = "none"
)

// CacheConfig selects and tunes a cache backend declaratively, suitable
// for embedding in a Config file.
type CacheConfig struct {
	Type   CacheType          `json:"type"             yaml:"type"             mapstructure:"type"`
	Memory *MemoryCacheConfig `json:"memory,omitempty" yaml:"memory,omitempty" mapstructure:"memory"`
	NATS   *NATSKVConfig      `json:"nats,omitempty"   yaml:"nats,omitempty"   mapstructure:"nats"`
}

// MemoryCacheConfig tunes the memory backend.
type MemoryCacheConfig struct {
	// MaxSize bounds the entry count; the oldest entry is evicted at
	// the bound. Non-positive means unbounded.
	MaxSize int `json:"max_size" yaml:"max_size" mapstructure:"max_size"`

	// TTL bounds entry lifetime; zero means entries never expire.
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
}

// DefaultCacheConfig is a bounded memory cache with no TTL.
func DefaultCacheConfig() *CacheConfig {
	return &CacheConfig{
		Type: CacheTypeMemory,
		Memory: &MemoryCacheConfig{
			MaxSize: constants.DefaultCacheSize,
		},
	}
}

// NewCacheFromConfig builds the backend a CacheConfig describes. A nil
// config gets the defaults.
func NewCacheFromConfig(config *CacheConfig) (Cache, error) {
	if config == nil {
		config = DefaultCacheConfig()
	}

	switch config.Type {
	case CacheTypeMemory:
		settings := config.Memory
		if settings == nil {
			settings = DefaultCacheConfig().Memory
		}

		if settings.TTL > 0 {
			return NewMemoryCacheWithTTL(settings.MaxSize, settings.TTL), nil
		}

		return NewMemoryCache(settings.MaxSize), nil

	case CacheTypeNATS:
		if config.NATS == nil {
			return nil, ErrNATSConfigRequired
		}

		return NewNATSKVCache(config.NATS)

	case CacheTypeNone:
		return NewNoOpCache(), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCacheType, config.Type)
	}
}

// NoOpCache satisfies Cache while storing nothing, so code paths that
// expect a cache can run with caching switched off.
type NoOpCache struct{}

// NewNoOpCache returns the disabled backend.
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// Get reports every key as uncached.
func (c *NoOpCache) Get(context.Context, string) (*CacheEntry, error) {
	return nil, ErrCacheDisabled
}

// Set drops the entry.
func (c *NoOpCache) Set(context.Context, string, *CacheEntry) error {
	return nil
}

// Delete is a no-op.
func (c *NoOpCache) Delete(context.Context, string) error {
	return nil
}

// Clear is a no-op.
func (c *NoOpCache) Clear(context.Context) error {
	return nil
}

// Has reports every key as absent.
func (c *NoOpCache) Has(context.Context, string) bool {
	return false
}

// CacheBuilder assembles a CacheConfig fluently. The zero configuration
// is the memory backend with defaults.
type CacheBuilder struct {
	config *CacheConfig
}

// NewCacheBuilder starts a builder.
func NewCacheBuilder() *CacheBuilder {
	return &CacheBuilder{
		config: &CacheConfig{Type: CacheTypeMemory},
	}
}

// WithType selects the backend.
func (b *CacheBuilder) WithType(cacheType CacheType) *CacheBuilder {
	b.config.Type = cacheType

	return b
}

// WithMemoryConfig tunes the memory backend.
func (b *CacheBuilder) WithMemoryConfig(maxSize int, ttl time.Duration) *CacheBuilder {
	b.config.Memory = &MemoryCacheConfig{MaxSize: maxSize, TTL: ttl}

	return b
}

// WithNATSConfig tunes the NATS backend.
func (b *CacheBuilder) WithNATSConfig(config *NATSKVConfig) *CacheBuilder {
	b.config.NATS = config

	return b
}

// Build constructs the configured backend.
func (b *CacheBuilder) Build() (Cache, error) {
	return NewCacheFromConfig(b.config)
}

// CacheChain layers backends as lookup tiers, fastest first. A hit in a
// later tier is copied back into the tiers in front of it, so a shared
// NATS bucket can sit behind a local memory tier.
type CacheChain struct {
	tiers []Cache
}

// NewCacheChain layers the given backends in lookup order.
func NewCacheChain(tiers ...Cache) *CacheChain {
	return &CacheChain{tiers: tiers}
}

// Get searches the tiers in order, backfilling earlier tiers on a hit.
func (c *CacheChain) Get(ctx context.Context, key string) (*CacheEntry, error) {
	for i, tier := range c.tiers {
		entry, err := tier.Get(ctx, key)
		if err != nil {
			continue
		}

		for _, front := range c.tiers[:i] {
			_ = front.Set(ctx, key, entry)
		}

		return entry, nil
	}

	return nil, ErrKeyNotFoundInCaches
}

// Set writes the entry through every tier, reporting the last failure.
func (c *CacheChain) Set(ctx context.Context, key string, entry *CacheEntry) error {
	var lastErr error

	for _, tier := range c.tiers {
		if err := tier.Set(ctx, key, entry); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Delete removes the key from every tier.
func (c *CacheChain) Delete(ctx context.Context, key string) error {
	var lastErr error

	for _, tier := range c.tiers {
		if err := tier.Delete(ctx, key); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Clear empties every tier.
func (c *CacheChain) Clear(ctx context.Context) error {
	var lastErr error

	for _, tier := range c.tiers {
		if err := tier.Clear(ctx); err != nil {
			lastErr = err
		}
	}

	return lastErr
}

// Has reports whether any tier holds the key.
func (c *CacheChain) Has(ctx context.Context, key string) bool {
	for _, tier := range c.tiers {
		if tier.Has(ctx, key) {
			return true
		}
	}

	return false
}
