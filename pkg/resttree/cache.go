package resttree

import (
	"context"
	"sync"
	"time"

	"github.com/resttree-io/resttree/internal/constants"
)

// Cache stores responses keyed by call signature. Any backend with
// these semantics can be supplied to a client or endpoint; the toolkit
// ships memory, NATS KV, chained, and no-op implementations.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// CacheEntry is one memoized response. A zero ExpiresAt means the
// entry never expires; the dispatch layer imposes no TTL of its own.
type CacheEntry struct {
	Response  *Response `json:"response"   yaml:"response"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	ExpiresAt time.Time `json:"expires_at" yaml:"expires_at"`
}

// expired reports whether the entry has passed its expiry, if any.
func (e *CacheEntry) expired() bool {
	return !e.ExpiresAt.IsZero() && time.Now().After(e.ExpiresAt)
}

// dispatchCached memoizes compute through the given cache. A nil cache
// is a passthrough: every call executes and nothing is stored. Errors
// from compute are never cached, and cache write failures are dropped
// so a flaky backend cannot fail an otherwise successful call.
func dispatchCached(ctx context.Context, cache Cache, key string, compute func() (*Response, error)) (*Response, error) {
	if cache == nil {
		return compute()
	}

	if entry, err := cache.Get(ctx, key); err == nil && entry != nil && entry.Response != nil {
		return entry.Response, nil
	}

	resp, err := compute()
	if err != nil {
		return resp, err
	}

	_ = cache.Set(ctx, key, &CacheEntry{Response: resp, CreatedAt: time.Now()})

	return resp, nil
}

// MemoryCache is a bounded in-memory cache backend. It is internally
// synchronized and safe to share between a client and its endpoints or
// across goroutines.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	maxSize int
	ttl     time.Duration
}

type memoryEntry struct {
	entry    *CacheEntry
	storedAt time.Time
}

// NewMemoryCache creates a memory cache holding at most maxSize
// entries; the oldest entry is evicted when the bound is reached. A
// non-positive maxSize means unbounded.
func NewMemoryCache(maxSize int) *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
		maxSize: maxSize,
	}
}

// NewMemoryCacheWithTTL creates a memory cache that stamps entries
// stored without their own expiry with the given TTL.
func NewMemoryCacheWithTTL(maxSize int, ttl time.Duration) *MemoryCache {
	cache := NewMemoryCache(maxSize)
	cache.ttl = ttl

	return cache
}

// Get retrieves an entry, removing and reporting it if expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheKeyNotFound
	}

	if stored.entry.expired() {
		delete(c.entries, key)

		return nil, ErrCacheEntryExpired
	}

	return stored.entry, nil
}

// Set stores an entry, evicting the oldest entry when full.
func (c *MemoryCache) Set(_ context.Context, key string, entry *CacheEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && c.maxSize > 0 && len(c.entries) >= c.maxSize {
		c.evictOldestLocked()
	}

	if c.ttl > 0 && entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = time.Now().Add(c.ttl)
	}

	c.entries[key] = &memoryEntry{entry: entry, storedAt: time.Now()}

	return nil
}

// Delete removes an entry; deleting a missing key is not an error.
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

	c.entries = make(map[string]*memoryEntry)

	return nil
}

// Has reports whether a live entry exists for the key.
func (c *MemoryCache) Has(_ context.Context, key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.entries[key]

	return ok && !stored.entry.expired()
}

// Len returns the current number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *MemoryCache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key, stored := range c.entries {
		if stored.entry.expired() {
			delete(c.entries, key)

			removed++
		}
	}

	return removed
}

// StartSweeper launches a background loop that sweeps expired entries
// at the given interval. A non-positive interval uses the default of
// one minute. The returned stop function halts the loop.
func (c *MemoryCache) StartSweeper(interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = constants.DefaultCacheCleanupInterval
	}

	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()

	var once sync.Once

	return func() {
		once.Do(func() { close(done) })
	}
}

func (c *MemoryCache) evictOldestLocked() {
	var (
		oldestKey  string
		oldestTime time.Time
	)

	for key, stored := range c.entries {
		if oldestKey == "" || stored.storedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = stored.storedAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
