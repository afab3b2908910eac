package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoff_ExponentialGrowth(t *testing.T) {
	t.Parallel()

	adapter := New(WithBackoffFactor(time.Second), WithBackoffMax(120*time.Second))

	assert.Equal(t, 1*time.Second, adapter.backoff(0, 0, 0, nil))
	assert.Equal(t, 2*time.Second, adapter.backoff(0, 0, 1, nil))
	assert.Equal(t, 4*time.Second, adapter.backoff(0, 0, 2, nil))
	assert.Equal(t, 64*time.Second, adapter.backoff(0, 0, 6, nil))
}

func TestBackoff_CappedAtMax(t *testing.T) {
	t.Parallel()

	adapter := New(WithBackoffFactor(time.Second), WithBackoffMax(30*time.Second))

	assert.Equal(t, 30*time.Second, adapter.backoff(0, 0, 5, nil))
	assert.Equal(t, 30*time.Second, adapter.backoff(0, 0, 20, nil))
}
