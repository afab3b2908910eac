package resttree

import (
	"context"
	"fmt"
	"strings"
)

// Endpoint is one addressable path segment in a resource tree. Nodes
// share a single owning client and dispatch verbs against their
// effective path, which is derived from live parentage on every access.
type Endpoint struct {
	client   *Client
	segment  string
	headers  Headers
	params   Params
	methods  MethodSet
	cache    Cache
	parent   *Endpoint
	children *Children
}

// EndpointOption configures an Endpoint at construction.
type EndpointOption func(*Endpoint)

// WithEndpointHeaders sets headers applied to every call on the
// endpoint, over the client defaults and under per-call values.
func WithEndpointHeaders(headers Headers) EndpointOption {
	return func(e *Endpoint) {
		e.headers = mergeMaps(headers)
	}
}

// WithEndpointParams sets query params applied to every call on the
// endpoint.
func WithEndpointParams(params Params) EndpointOption {
	return func(e *Endpoint) {
		e.params = mergeMaps(params)
	}
}

// WithEndpointMethods restricts the verbs the endpoint accepts. The
// default is the full registry.
func WithEndpointMethods(methods ...Method) EndpointOption {
	return func(e *Endpoint) {
		e.methods = NewMethodSet(methods...)
	}
}

// WithEndpointCache attaches a response cache local to this endpoint,
// distinct from the owning client's cache.
func WithEndpointCache(cache Cache) EndpointOption {
	return func(e *Endpoint) {
		e.cache = cache
	}
}

// newEndpoint builds a detached node owned by client. Separators are
// trimmed from the segment so it can never smuggle extra path levels.
func newEndpoint(client *Client, segment string, opts ...EndpointOption) *Endpoint {
	endpoint := &Endpoint{
		client:  client,
		segment: strings.Trim(segment, "/"),
		methods: AllMethods(),
	}

	for _, opt := range opts {
		opt(endpoint)
	}

	endpoint.children = newChildren(endpoint)

	return endpoint
}

// Name returns the endpoint's own path segment.
func (e *Endpoint) Name() string {
	return e.segment
}

// Client returns the owning API client.
func (e *Endpoint) Client() *Client {
	return e.client
}

// Parent returns the current parent node, or nil when detached.
func (e *Endpoint) Parent() *Endpoint {
	return e.parent
}

// Children returns the node's child collection.
func (e *Endpoint) Children() *Children {
	return e.children
}

// Path returns the effective path: ancestor segments joined with "/",
// most distant ancestor first. It is recomputed on every call so
// reparenting is reflected immediately.
func (e *Endpoint) Path() string {
	if e.parent == nil {
		return e.segment
	}

	return e.parent.Path() + "/" + e.segment
}

// URL returns the endpoint's resolved address under the owning client.
func (e *Endpoint) URL() string {
	return e.client.resolveURL(e.Path(), nil)
}

// Methods returns the endpoint's allowed verb set.
func (e *Endpoint) Methods() MethodSet {
	return e.methods
}

// Equal reports whether two nodes address the same effective path.
// Identity follows the live path, so a reparented node compares (and
// hashes) according to where it sits now.
func (e *Endpoint) Equal(other *Endpoint) bool {
	if other == nil {
		return false
	}

	return e.Path() == other.Path()
}

// HashKey returns the node's identity key, consistent with Equal.
func (e *Endpoint) HashKey() string {
	return e.Path()
}

// String implements fmt.Stringer.
func (e *Endpoint) String() string {
	return e.Path()
}

// Child returns the child node for the given segment, creating and
// attaching it if it does not exist yet. Navigation never fails for
// string segments; unknown children are materialized on the miss.
func (e *Endpoint) Child(segment string) *Endpoint {
	return e.children.materialize(segment)
}

// ChildRef resolves a child from a loosely typed reference. Strings
// and integers are accepted; anything else is a programmer error and
// fails fast.
func (e *Endpoint) ChildRef(ref interface{}) (*Endpoint, error) {
	switch value := ref.(type) {
	case string:
		if strings.Trim(value, "/") == "" {
			return nil, fmt.Errorf("%w: got %q", ErrSegmentRequired, value)
		}

		return e.Child(value), nil
	case int:
		return e.Child(fmt.Sprintf("%d", value)), nil
	case int32:
		return e.Child(fmt.Sprintf("%d", value)), nil
	case int64:
		return e.Child(fmt.Sprintf("%d", value)), nil
	case uint:
		return e.Child(fmt.Sprintf("%d", value)), nil
	case uint64:
		return e.Child(fmt.Sprintf("%d", value)), nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrInvalidSegment, ref)
	}
}

// Head sends an HTTP HEAD request to the endpoint.
func (e *Endpoint) Head(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodHead, opts)
}

// Get sends an HTTP GET request to the endpoint.
func (e *Endpoint) Get(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodGet, opts)
}

// Post sends an HTTP POST request to the endpoint.
func (e *Endpoint) Post(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodPost, opts)
}

// Put sends an HTTP PUT request to the endpoint.
func (e *Endpoint) Put(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodPut, opts)
}

// Patch sends an HTTP PATCH request to the endpoint.
func (e *Endpoint) Patch(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodPatch, opts)
}

// Delete sends an HTTP DELETE request to the endpoint.
func (e *Endpoint) Delete(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodDelete, opts)
}

// Options sends an HTTP OPTIONS request to the endpoint.
func (e *Endpoint) Options(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodOptions, opts)
}

// Trace sends an HTTP TRACE request to the endpoint.
func (e *Endpoint) Trace(ctx context.Context, opts ...RequestOption) (*Response, error) {
	return e.send(ctx, MethodTrace, opts)
}

// send validates the verb against the allow-list before any network
// activity, folds endpoint-local overrides under the per-call values,
// consults the endpoint cache, and delegates to the owning client at
// the resolved path.
func (e *Endpoint) send(ctx context.Context, method Method, opts []RequestOption) (*Response, error) {
	path := e.Path()

	if !e.methods.Contains(method) {
		return nil, fmt.Errorf("%w: %s %s", ErrMethodNotAllowed, method, path)
	}

	callOptions := buildRequestOptions(opts)
	merged := &requestOptions{
		headers: mergeMaps(e.headers, callOptions.headers),
		params:  mergeMaps(e.params, callOptions.params),
		body:    callOptions.body,
	}

	key := cacheKey(method, e.client.identity()+"|"+path, "", merged)

	return dispatchCached(ctx, e.cache, key, func() (*Response, error) {
		return e.dispatch(ctx, method, path, merged)
	})
}

// dispatch forwards to the matching verb on the owning client, which
// applies its own defaults and cache.
func (e *Endpoint) dispatch(ctx context.Context, method Method, path string, merged *requestOptions) (*Response, error) {
	forward := make([]RequestOption, 0, 3)
	if merged.headers != nil {
		forward = append(forward, WithHeaders(merged.headers))
	}

	if merged.params != nil {
		forward = append(forward, WithParams(merged.params))
	}

	if merged.body != nil {
		forward = append(forward, WithBody(merged.body))
	}

	switch method {
	case MethodHead:
		return e.client.Head(ctx, path, forward...)
	case MethodGet:
		return e.client.Get(ctx, path, forward...)
	case MethodPost:
		return e.client.Post(ctx, path, forward...)
	case MethodPut:
		return e.client.Put(ctx, path, forward...)
	case MethodPatch:
		return e.client.Patch(ctx, path, forward...)
	case MethodDelete:
		return e.client.Delete(ctx, path, forward...)
	case MethodOptions:
		return e.client.Options(ctx, path, forward...)
	case MethodTrace:
		return e.client.Trace(ctx, path, forward...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
}
