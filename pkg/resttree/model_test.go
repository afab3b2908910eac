package resttree_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resttree-io/resttree/pkg/resttree"
)

func TestModelStaging(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))
	model := resttree.NewModel(client.Endpoint("users").Child("42"), map[string]interface{}{
		"name": "ada",
	})

	model.Set("name", "grace")
	model.Update(map[string]interface{}{"role": "admin"})

	value, ok := model.Get("name")
	require.True(t, ok)
	assert.Equal(t, "grace", value)

	model.Rollback()

	value, ok = model.Get("name")
	require.True(t, ok)
	assert.Equal(t, "ada", value)

	_, ok = model.Get("role")
	assert.False(t, ok)
}

func TestModelSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("pushes staged state and commits on success", func(t *testing.T) {
		t.Parallel()

		sender := newStubSender(http.StatusOK, `{}`)
		client := newTestClient(t, sender)

		model := resttree.NewModel(client.Endpoint("users").Child("42"), map[string]interface{}{
			"name": "ada",
		})
		model.Set("role", "admin")

		resp, err := model.Save(ctx)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		call := sender.lastCall()
		assert.Equal(t, "PATCH", call.Method)
		assert.Equal(t, "https://api.example.com/svc/users/42", call.URL)
		assert.JSONEq(t, `{"name":"ada","role":"admin"}`, string(call.Body))

		// Committed: a later rollback keeps the change.
		model.Rollback()
		value, ok := model.Get("role")
		require.True(t, ok)
		assert.Equal(t, "admin", value)
	})

	t.Run("remote failure leaves staged state intact", func(t *testing.T) {
		t.Parallel()

		sender := &stubSender{respond: func(sentRequest) (*http.Response, error) {
			return nil, io.ErrUnexpectedEOF
		}}
		client := newTestClient(t, sender)

		model := resttree.NewModel(client.Endpoint("users").Child("42"), nil)
		model.Set("role", "admin")

		_, err := model.Save(ctx)
		require.Error(t, err)

		// Still staged, so it can be rolled back.
		model.Rollback()
		_, ok := model.Get("role")
		assert.False(t, ok)
	})
}

func TestModelFetch(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	sender := &stubSender{respond: func(sentRequest) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`{"name":"ada","active":true}`)),
		}, nil
	}}
	client := newTestClient(t, sender)

	model := resttree.NewModel(client.Endpoint("users").Child("42"), nil)

	resp, err := model.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	name, ok := model.Get("name")
	require.True(t, ok)
	assert.Equal(t, "ada", name)

	// Fetched values are committed, not staged.
	model.Rollback()
	_, ok = model.Get("active")
	assert.True(t, ok)
}

func TestModelEqual(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, newStubSender(http.StatusOK, `{}`))

	a := resttree.NewModel(client.Endpoint("users").Child("42"), map[string]interface{}{"name": "ada"})
	b := resttree.NewModel(client.Endpoint("users").Child("42"), map[string]interface{}{"name": "ada"})
	c := resttree.NewModel(client.Endpoint("users").Child("43"), map[string]interface{}{"name": "ada"})

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))
}
