package resttree_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resttree-io/resttree/pkg/resttree"
)

func TestChildrenMaterialize(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))
	users := client.Endpoint("users")

	t.Run("created on first access", func(t *testing.T) {
		t.Parallel()

		child := users.Child("42")
		require.NotNil(t, child)
		assert.Same(t, users, child.Parent())
		assert.Same(t, child, users.Children().Get("42"))
	})

	t.Run("repeated access returns the same node", func(t *testing.T) {
		t.Parallel()

		first := users.Child("7")
		second := users.Child("7")
		assert.Same(t, first, second)
		assert.Same(t, first, users.Child("/7/"))
	})

	t.Run("get never creates", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, users.Children().Get("never-touched"))
	})
}

func TestChildrenAdd(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	t.Run("attaches a detached node", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		profile := client.Endpoint("profile")

		users.Children().Add(profile)
		assert.Same(t, users, profile.Parent())
		assert.True(t, users.Children().Contains(profile))
		assert.Equal(t, "users/profile", profile.Path())
	})

	t.Run("reparenting detaches from the previous parent", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		admins := client.Endpoint("admins")
		node := users.Child("42")

		admins.Children().Add(node)

		assert.Same(t, admins, node.Parent())
		assert.Nil(t, users.Children().Get("42"))
		assert.Equal(t, 0, users.Children().Len())
	})

	t.Run("same segment replaces the existing member", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		old := users.Child("42")
		replacement := client.Endpoint("42")

		users.Children().Add(replacement)

		assert.Same(t, replacement, users.Children().Get("42"))
		assert.Nil(t, old.Parent())
		assert.Equal(t, 1, users.Children().Len())
	})

	t.Run("nil and self are ignored", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		users.Children().Add(nil)
		users.Children().Add(users)
		assert.Equal(t, 0, users.Children().Len())
	})
}

func TestChildrenRemoveDiscardPop(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	t.Run("discard is a no-op for strangers", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		stranger := client.Endpoint("stranger")

		users.Children().Discard(stranger)
		assert.Equal(t, 0, users.Children().Len())
	})

	t.Run("discard detaches a member", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		node := users.Child("42")

		users.Children().Discard(node)
		assert.Nil(t, node.Parent())
		assert.Equal(t, "42", node.Path())
	})

	t.Run("remove fails for strangers", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		stranger := client.Endpoint("stranger")

		err := users.Children().Remove(stranger)
		assert.ErrorIs(t, err, resttree.ErrChildNotFound)
	})

	t.Run("remove detaches a member", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		node := users.Child("42")

		require.NoError(t, users.Children().Remove(node))
		assert.Nil(t, node.Parent())
		assert.False(t, users.Children().Contains(node))
	})

	t.Run("pop returns and detaches", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		node := users.Child("42")

		popped := users.Children().Pop("42")
		assert.Same(t, node, popped)
		assert.Nil(t, node.Parent())
		assert.Nil(t, users.Children().Pop("42"))
	})
}

func TestChildrenBulk(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	t.Run("update attaches several nodes", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		active := client.Endpoint("active")
		banned := client.Endpoint("banned")

		users.Children().Update(active, banned)

		assert.Equal(t, 2, users.Children().Len())
		assert.ElementsMatch(t, []*resttree.Endpoint{active, banned}, users.Children().All())
	})

	t.Run("clear detaches everything", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		a := users.Child("a")
		b := users.Child("b")

		users.Children().Clear()

		assert.Equal(t, 0, users.Children().Len())
		assert.Nil(t, a.Parent())
		assert.Nil(t, b.Parent())
	})
}

func TestChildrenContainsByIdentity(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	users := client.Endpoint("users")
	users.Child("42")

	// Contains follows path identity, so an equal node from a parallel
	// tree counts as present.
	twin := client.Endpoint("users").Child("42")
	assert.True(t, users.Children().Contains(twin))
}

func TestChildrenRemoveByIdentity(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	t.Run("remove accepts a structurally equal twin", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("users")
		member := users.Child("42")

		// Removal uses the same path identity as Contains: the twin
		// names the member, and the member is what gets detached.
		twin := client.Endpoint("users").Child("42")
		require.NoError(t, users.Children().Remove(twin))

		assert.Nil(t, member.Parent())
		assert.Equal(t, 0, users.Children().Len())
	})

	t.Run("discard accepts a structurally equal twin", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("admins")
		member := users.Child("7")

		twin := client.Endpoint("admins").Child("7")
		users.Children().Discard(twin)

		assert.Nil(t, member.Parent())
		assert.Equal(t, 0, users.Children().Len())
	})

	t.Run("same segment different path is not a member", func(t *testing.T) {
		t.Parallel()

		users := client.Endpoint("groups")
		users.Child("9")

		stranger := client.Endpoint("teams").Child("9")
		err := users.Children().Remove(stranger)
		require.ErrorIs(t, err, resttree.ErrChildNotFound)
		assert.Equal(t, 1, users.Children().Len())
	})
}
