package constants

import "time"

// Retry and backoff tunables.
const (
	// DefaultRetryMax is the default number of retry attempts for
	// retryable response statuses.
	DefaultRetryMax = 10

	// DefaultBackoffFactor is the base unit for exponential backoff
	// between attempts: sleep = factor * 2^attempt.
	DefaultBackoffFactor = 1 * time.Second

	// DefaultBackoffMax caps the backoff delay between attempts.
	DefaultBackoffMax = 120 * time.Second
)

// Timeouts.
const (
	// DefaultSendTimeout is applied to each outbound attempt when the
	// caller's context carries no deadline of its own.
	DefaultSendTimeout = 5 * time.Second
)

// Cache tunables.
const (
	// DefaultCacheSize is the maximum entry count for the in-memory
	// cache backend.
	DefaultCacheSize = 1000

	// DefaultCacheCleanupInterval is how often the in-memory backend
	// sweeps expired entries.
	DefaultCacheCleanupInterval = 1 * time.Minute
)
