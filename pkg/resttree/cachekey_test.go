package resttree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCacheKey(t *testing.T) {
	t.Parallel()

	t.Run("same call produces same key regardless of option order", func(t *testing.T) {
		t.Parallel()

		first := buildRequestOptions([]RequestOption{
			WithParam("page", "2"),
			WithParam("limit", "50"),
			WithHeader("X-Trace", "abc"),
		})
		second := buildRequestOptions([]RequestOption{
			WithHeader("X-Trace", "abc"),
			WithParam("limit", "50"),
			WithParam("page", "2"),
		})

		assert.Equal(t,
			cacheKey(MethodGet, "svc/", "users", first),
			cacheKey(MethodGet, "svc/", "users", second),
		)
	})

	t.Run("verb participates in the key", func(t *testing.T) {
		t.Parallel()

		options := buildRequestOptions(nil)
		assert.NotEqual(t,
			cacheKey(MethodGet, "svc/", "users", options),
			cacheKey(MethodDelete, "svc/", "users", options),
		)
	})

	t.Run("owner identity participates in the key", func(t *testing.T) {
		t.Parallel()

		options := buildRequestOptions(nil)
		assert.NotEqual(t,
			cacheKey(MethodGet, "svc-a/", "users", options),
			cacheKey(MethodGet, "svc-b/", "users", options),
		)
	})

	t.Run("differing params produce differing keys", func(t *testing.T) {
		t.Parallel()

		first := buildRequestOptions([]RequestOption{WithParam("page", "1")})
		second := buildRequestOptions([]RequestOption{WithParam("page", "2")})

		assert.NotEqual(t,
			cacheKey(MethodGet, "svc/", "users", first),
			cacheKey(MethodGet, "svc/", "users", second),
		)
	})

	t.Run("body participates in the key", func(t *testing.T) {
		t.Parallel()

		first := buildRequestOptions([]RequestOption{WithBody([]byte(`{"name":"a"}`))})
		second := buildRequestOptions([]RequestOption{WithBody([]byte(`{"name":"b"}`))})

		assert.NotEqual(t,
			cacheKey(MethodPost, "svc/", "users", first),
			cacheKey(MethodPost, "svc/", "users", second),
		)
	})

	t.Run("nil options equals empty options", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t,
			cacheKey(MethodGet, "svc/", "users", nil),
			cacheKey(MethodGet, "svc/", "users", buildRequestOptions(nil)),
		)
	})
}
