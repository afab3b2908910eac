package resttree

import "context"

// PageState carries the mutable parts of a paginated request: the
// query parameters and body sent with the next page. Headers stay
// fixed across the walk.
type PageState struct {
	Params Params
	Body   []byte
}

// Pager derives the next page's state from the page just received and
// reports whether the walk is complete. It runs after every page, so
// the stop condition can depend on the state, the response, or both.
type Pager func(state PageState, resp *Response) (next PageState, done bool)

// Paginate issues repeated requests with the given verb, invoking
// visit on every page. The initial parameters and body come from opts;
// after each page the pager rewrites them for the next request. The
// walk stops when the pager reports done, and an error from the
// request, the visit callback, or the context stops it immediately.
//
// Each page goes through the normal dispatch path, so the method
// allow-list, merged overrides, and caches all apply per page.
func (e *Endpoint) Paginate(ctx context.Context, method Method, pager Pager, visit func(*Response) error, opts ...RequestOption) error {
	callOptions := buildRequestOptions(opts)
	state := PageState{Params: callOptions.params, Body: callOptions.body}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		pageOpts := make([]RequestOption, 0, 3)
		if callOptions.headers != nil {
			pageOpts = append(pageOpts, WithHeaders(callOptions.headers))
		}

		if state.Params != nil {
			pageOpts = append(pageOpts, WithParams(state.Params))
		}

		if state.Body != nil {
			pageOpts = append(pageOpts, WithBody(state.Body))
		}

		resp, err := e.send(ctx, method, pageOpts)
		if err != nil {
			return err
		}

		if err := visit(resp); err != nil {
			return err
		}

		next, done := pager(state, resp)
		if done {
			return nil
		}

		state = next
	}
}
