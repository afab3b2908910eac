package resttree

import (
	"errors"
	"fmt"
)

// Static errors that can be wrapped with context.
var (
	ErrBaseURLRequired      = errors.New("base URL is required")
	ErrConfigRequired       = errors.New("config is required")
	ErrUnknownMethod        = errors.New("unknown HTTP method")
	ErrMethodNotAllowed     = errors.New("method not allowed for endpoint")
	ErrInvalidSegment       = errors.New("child segment must be a string or integer")
	ErrSegmentRequired      = errors.New("endpoint segment is required")
	ErrChildNotFound        = errors.New("child endpoint not found")
	ErrCacheKeyNotFound     = errors.New("cache key not found")
	ErrCacheEntryExpired    = errors.New("cache entry expired")
	ErrCacheDisabled        = errors.New("cache disabled")
	ErrKeyNotFoundInCaches  = errors.New("key not found in any cache")
	ErrNATSConfigRequired   = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	ErrNoStateToSave        = errors.New("no pending changes to save")
)

// ConnectionError reports a network-level failure reaching the remote
// service. It is returned as an ordinary error value from client verb
// methods, never retried by the transport adapter.
type ConnectionError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection to %s failed: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying network error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// TimeoutError reports that an exchange exceeded its per-attempt
// deadline.
type TimeoutError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request to %s timed out: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying timeout error.
func (e *TimeoutError) Unwrap() error {
	return e.Err
}

// IsConnectionError checks if the error is a connection failure.
func IsConnectionError(err error) bool {
	connErr := &ConnectionError{}

	return errors.As(err, &connErr)
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	timeoutErr := &TimeoutError{}

	return errors.As(err, &timeoutErr)
}

// IsMethodNotAllowed checks if the error is an allow-list rejection.
func IsMethodNotAllowed(err error) bool {
	return errors.Is(err, ErrMethodNotAllowed)
}
