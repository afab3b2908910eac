package resttree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resttree-io/resttree/pkg/resttree"
)

func TestParseMethod(t *testing.T) {
	t.Parallel()

	t.Run("accepts canonical names", func(t *testing.T) {
		t.Parallel()

		for _, method := range resttree.Methods() {
			parsed, err := resttree.ParseMethod(string(method))
			require.NoError(t, err)
			assert.Equal(t, method, parsed)
		}
	})

	t.Run("is case insensitive", func(t *testing.T) {
		t.Parallel()

		parsed, err := resttree.ParseMethod("get")
		require.NoError(t, err)
		assert.Equal(t, resttree.MethodGet, parsed)

		parsed, err = resttree.ParseMethod("Delete")
		require.NoError(t, err)
		assert.Equal(t, resttree.MethodDelete, parsed)
	})

	t.Run("rejects unknown verbs", func(t *testing.T) {
		t.Parallel()

		_, err := resttree.ParseMethod("FETCH")
		require.Error(t, err)
		assert.ErrorIs(t, err, resttree.ErrUnknownMethod)
	})
}

func TestMethods(t *testing.T) {
	t.Parallel()

	methods := resttree.Methods()
	assert.Len(t, methods, 8)

	// Mutating the returned slice must not affect later calls.
	methods[0] = resttree.Method("BOGUS")
	assert.Equal(t, resttree.MethodHead, resttree.Methods()[0])
}

func TestMethodSet(t *testing.T) {
	t.Parallel()

	t.Run("contains only its members", func(t *testing.T) {
		t.Parallel()

		set := resttree.NewMethodSet(resttree.MethodGet, resttree.MethodPost)
		assert.True(t, set.Contains(resttree.MethodGet))
		assert.True(t, set.Contains(resttree.MethodPost))
		assert.False(t, set.Contains(resttree.MethodDelete))
		assert.Equal(t, 2, set.Len())
	})

	t.Run("all methods covers the registry", func(t *testing.T) {
		t.Parallel()

		set := resttree.AllMethods()
		for _, method := range resttree.Methods() {
			assert.True(t, set.Contains(method))
		}
	})

	t.Run("all returns sorted members", func(t *testing.T) {
		t.Parallel()

		set := resttree.NewMethodSet(resttree.MethodPut, resttree.MethodGet, resttree.MethodDelete)
		assert.Equal(t, []resttree.Method{
			resttree.MethodDelete,
			resttree.MethodGet,
			resttree.MethodPut,
		}, set.All())
	})
}
