package resttree

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/resttree-io/resttree/internal/transport"
)

// Sender performs one resilient exchange. The default implementation is
// the retrying transport adapter; tests and callers with custom wire
// needs can substitute their own.
type Sender interface {
	Send(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error)
}

// Client is the single point of truth for a remote service's base
// address, credentials, and default request metadata. It is the only
// component that invokes the transport.
type Client struct {
	baseURL       string
	auth          Auth
	headers       Headers
	params        Params
	cache         Cache
	sender        Sender
	logger        Logger
	interceptors  *InterceptorChain
	transportOpts []transport.Option
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAuth sets the client credential. The value is opaque: it is
// applied to outbound requests and otherwise only compared by equality.
func WithAuth(auth Auth) ClientOption {
	return func(c *Client) {
		c.auth = auth
	}
}

// WithDefaultHeaders sets headers applied to every request. Per-call
// headers win on key conflicts.
func WithDefaultHeaders(headers Headers) ClientOption {
	return func(c *Client) {
		c.headers = mergeMaps(headers)
	}
}

// WithDefaultParams sets query params applied to every request.
// Per-call params win on key conflicts.
func WithDefaultParams(params Params) ClientOption {
	return func(c *Client) {
		c.params = mergeMaps(params)
	}
}

// WithCache attaches a response cache shared by verb calls made
// directly on the client. Endpoint-local caches are separate.
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger attaches a structured logger. Log events never affect
// control flow.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSender substitutes the transport. Retry and timeout options are
// ignored when a custom sender is supplied.
func WithSender(sender Sender) ClientOption {
	return func(c *Client) {
		c.sender = sender
	}
}

// WithInterceptors attaches an interceptor chain run around every
// exchange.
func WithInterceptors(chain *InterceptorChain) ClientOption {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithRetryMax sets the transport's retry attempt budget.
func WithRetryMax(n int) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, transport.WithRetryMax(n))
	}
}

// WithBackoffFactor sets the transport's exponential backoff unit.
func WithBackoffFactor(factor time.Duration) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, transport.WithBackoffFactor(factor))
	}
}

// WithTimeout sets the default per-attempt timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, transport.WithTimeout(timeout))
	}
}

// WithIdempotentRetryOnly restricts transport retries to idempotent
// verbs. By default, every verb is retried under the same policy.
func WithIdempotentRetryOnly() ClientOption {
	return func(c *Client) {
		c.transportOpts = append(c.transportOpts, transport.WithIdempotentOnly())
	}
}

// New creates a client for the service rooted at baseURL. The base URL
// is normalized to end with "/" so relative joins behave predictably.
func New(baseURL string, opts ...ClientOption) (*Client, error) {
	if baseURL == "" {
		return nil, ErrBaseURLRequired
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	client := &Client{
		baseURL: baseURL,
		logger:  NewNopLogger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.sender == nil {
		transportOpts := client.transportOpts
		if _, isNop := client.logger.(*NopLogger); !isNop {
			transportOpts = append(transportOpts, transport.WithLogger(client.logger))
		}

		client.sender = transport.New(transportOpts...)
	}

	return client, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Auth returns the client credential.
func (c *Client) Auth() Auth {
	return c.auth
}

// Cache returns the client-level response cache, if any.
func (c *Client) Cache() Cache {
	return c.cache
}

// Equal reports whether two clients address the same service with the
// same credential. Default headers and params do not participate in
// identity.
func (c *Client) Equal(other *Client) bool {
	if other == nil {
		return false
	}

	return c.baseURL == other.baseURL && c.auth == other.auth
}

// Endpoint creates a root endpoint node owned by this client.
func (c *Client) Endpoint(segment string, opts ...EndpointOption) *Endpoint {
	return newEndpoint(c, segment, opts...)
}

// Request sends a request with an explicit verb. Unlike the per-verb
// convenience methods, Request never consults the response cache.
func (c *Client) Request(ctx context.Context, method Method, route string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, method, route, buildRequestOptions(opts))
}

// Head sends an HTTP HEAD request.
func (c *Client) Head(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodHead, route, opts)
}

// Get sends an HTTP GET request.
func (c *Client) Get(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodGet, route, opts)
}

// Post sends an HTTP POST request.
func (c *Client) Post(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodPost, route, opts)
}

// Put sends an HTTP PUT request.
func (c *Client) Put(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodPut, route, opts)
}

// Patch sends an HTTP PATCH request.
func (c *Client) Patch(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodPatch, route, opts)
}

// Delete sends an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodDelete, route, opts)
}

// Options sends an HTTP OPTIONS request.
func (c *Client) Options(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodOptions, route, opts)
}

// Trace sends an HTTP TRACE request.
func (c *Client) Trace(ctx context.Context, route string, opts ...RequestOption) (*Response, error) {
	return c.send(ctx, MethodTrace, route, opts)
}

// send is the cached verb dispatch: each per-verb method funnels
// through here so an attached cache can short-circuit the exchange.
func (c *Client) send(ctx context.Context, method Method, route string, opts []RequestOption) (*Response, error) {
	options := buildRequestOptions(opts)
	key := cacheKey(method, c.identity(), route, options)

	return dispatchCached(ctx, c.cache, key, func() (*Response, error) {
		return c.do(ctx, method, route, options)
	})
}

// do performs the exchange: resolve the route, merge defaults, apply
// auth, dispatch, and classify transport failures into returned error
// values.
func (c *Client) do(ctx context.Context, method Method, route string, options *requestOptions) (*Response, error) {
	headers := mergeMaps(c.headers, options.headers)
	params := mergeMaps(c.params, options.params)
	uri := c.resolveURL(route, params)

	header := http.Header{}
	header.Set("Accept", "application/json")

	for key, value := range headers {
		header.Set(key, value)
	}

	if c.auth != nil {
		c.auth.Apply(&http.Request{Header: header})
	}

	reqInfo := &RequestInfo{Method: method, URL: uri, Headers: header}

	if c.interceptors != nil {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, reqInfo)
		if err != nil {
			return nil, err
		}
	}

	c.logger.Debug("HTTP Request", map[string]interface{}{
		"method": string(method),
		"url":    uri,
	})

	httpResp, err := c.sender.Send(ctx, string(method), uri, options.body, header)
	if err != nil {
		return nil, classifySendError(uri, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, classifySendError(uri, err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	c.logger.Debug("HTTP Response", map[string]interface{}{
		"status_code": resp.StatusCode,
	})

	if c.interceptors != nil {
		err := c.interceptors.ExecuteResponseInterceptors(ctx, reqInfo, resp)
		if err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// resolveURL joins a route onto the base URL. The base always keeps
// its trailing separator, and a leading "/" on the route is stripped
// so an absolute-looking route cannot escape the base.
func (c *Client) resolveURL(route string, params map[string]string) string {
	uri := c.baseURL + strings.TrimLeft(route, "/")

	if len(params) > 0 {
		values := url.Values{}
		for key, value := range params {
			values.Set(key, value)
		}

		separator := "?"
		if strings.Contains(uri, "?") {
			separator = "&"
		}

		uri += separator + values.Encode()
	}

	return uri
}

// identity is the client's contribution to cache keys: base URL plus a
// fingerprint of the credential, so two clients for the same service
// under different credentials never share entries.
func (c *Client) identity() string {
	if c.auth == nil {
		return c.baseURL
	}

	hash := fnv.New64a()
	_, _ = fmt.Fprintf(hash, "%T%v", c.auth, c.auth)

	return c.baseURL + "#" + strconv.FormatUint(hash.Sum64(), 16)
}

// classifySendError turns transport failures into the client's typed
// error values so callers can branch with errors.As.
func classifySendError(uri string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{URL: uri, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{URL: uri, Err: err}
	}

	return &ConnectionError{URL: uri, Err: err}
}
