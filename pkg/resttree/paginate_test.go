package resttree_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resttree-io/resttree/pkg/resttree"
)

// newPagedSender serves a three-page collection: each request echoes
// its "page" param and flags the last page.
func newPagedSender(t *testing.T) *stubSender {
	t.Helper()

	return &stubSender{
		respond: func(req sentRequest) (*http.Response, error) {
			parsed, err := url.Parse(req.URL)
			require.NoError(t, err)

			page := parsed.Query().Get("page")
			body := fmt.Sprintf(`{"page": %s, "last": %v}`, page, page == "3")

			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{},
				Body:       io.NopCloser(strings.NewReader(body)),
			}, nil
		},
	}
}

// nextPagePager advances the "page" param until the response flags the
// last page.
func nextPagePager(t *testing.T) resttree.Pager {
	t.Helper()

	return func(state resttree.PageState, resp *resttree.Response) (resttree.PageState, bool) {
		var parsed struct {
			Page int  `json:"page"`
			Last bool `json:"last"`
		}
		require.NoError(t, resp.JSON(&parsed))

		if parsed.Last {
			return state, true
		}

		state.Params = resttree.Params{"page": fmt.Sprintf("%d", parsed.Page+1)}

		return state, false
	}
}

func TestEndpointPaginate(t *testing.T) {
	t.Parallel()

	t.Run("walks pages until the pager stops", func(t *testing.T) {
		t.Parallel()

		sender := newPagedSender(t)
		users := newTestClient(t, sender).Endpoint("users")

		var pages []string
		err := users.Paginate(context.Background(), resttree.MethodGet, nextPagePager(t),
			func(resp *resttree.Response) error {
				pages = append(pages, resp.Text())
				return nil
			},
			resttree.WithParam("page", "1"),
		)
		require.NoError(t, err)

		assert.Equal(t, 3, sender.callCount())
		require.Len(t, pages, 3)
		assert.JSONEq(t, `{"page": 1, "last": false}`, pages[0])
		assert.JSONEq(t, `{"page": 3, "last": true}`, pages[2])
		assert.Contains(t, sender.lastCall().URL, "page=3")
	})

	t.Run("visit error stops the walk", func(t *testing.T) {
		t.Parallel()

		sender := newPagedSender(t)
		users := newTestClient(t, sender).Endpoint("users")

		wantErr := errors.New("enough")
		err := users.Paginate(context.Background(), resttree.MethodGet, nextPagePager(t),
			func(*resttree.Response) error { return wantErr },
			resttree.WithParam("page", "1"),
		)
		require.ErrorIs(t, err, wantErr)
		assert.Equal(t, 1, sender.callCount())
	})

	t.Run("method gate applies per page", func(t *testing.T) {
		t.Parallel()

		sender := newPagedSender(t)
		users := newTestClient(t, sender).Endpoint("users",
			resttree.WithEndpointMethods(resttree.MethodGet))

		err := users.Paginate(context.Background(), resttree.MethodPost, nextPagePager(t),
			func(*resttree.Response) error { return nil },
		)
		require.ErrorIs(t, err, resttree.ErrMethodNotAllowed)
		assert.Equal(t, 0, sender.callCount())
	})

	t.Run("canceled context stops before dispatch", func(t *testing.T) {
		t.Parallel()

		sender := newPagedSender(t)
		users := newTestClient(t, sender).Endpoint("users")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := users.Paginate(ctx, resttree.MethodGet, nextPagePager(t),
			func(*resttree.Response) error { return nil },
		)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, sender.callCount())
	})
}
