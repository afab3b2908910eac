package resttree

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Headers is a set of request header overrides.
type Headers = map[string]string

// Params is a set of query parameter overrides.
type Params = map[string]string

// Response is the raw result of one exchange. The body is fully read
// before the response is returned, so a Response is a plain value that
// can be cached and re-returned safely.
type Response struct {
	StatusCode int         `json:"status_code" yaml:"status_code"`
	Headers    http.Header `json:"headers"     yaml:"headers"`
	Body       []byte      `json:"body"        yaml:"body"`
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v interface{}) error {
	err := json.Unmarshal(r.Body, v)
	if err != nil {
		return fmt.Errorf("parsing response body: %w", err)
	}

	return nil
}

// Text returns the response body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// Auth carries opaque credentials. Implementations must be comparable
// values: two clients are equal only when their base URL and auth
// compare equal, and the credential is never inspected beyond applying
// it to an outbound request.
type Auth interface {
	Apply(req *http.Request)
}

// BasicAuth is a username/password credential pair.
type BasicAuth struct {
	Username string
	Password string
}

// Apply implements Auth.
func (a BasicAuth) Apply(req *http.Request) {
	req.SetBasicAuth(a.Username, a.Password)
}

// TokenAuth is a bearer token credential.
type TokenAuth struct {
	Token string
}

// Apply implements Auth.
func (a TokenAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+a.Token)
}

// RequestOption customizes a single call. Per-call headers and params
// win over endpoint-local values, which in turn win over client
// defaults.
type RequestOption func(*requestOptions)

type requestOptions struct {
	headers map[string]string
	params  map[string]string
	body    []byte
}

// WithHeaders merges the given headers into the call.
func WithHeaders(headers Headers) RequestOption {
	return func(o *requestOptions) {
		o.headers = mergeMaps(o.headers, headers)
	}
}

// WithHeader sets a single header for the call.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.headers = mergeMaps(o.headers, Headers{key: value})
	}
}

// WithParams merges the given query params into the call.
func WithParams(params Params) RequestOption {
	return func(o *requestOptions) {
		o.params = mergeMaps(o.params, params)
	}
}

// WithParam sets a single query param for the call.
func WithParam(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.params = mergeMaps(o.params, Params{key: value})
	}
}

// WithBody sets the raw request body.
func WithBody(body []byte) RequestOption {
	return func(o *requestOptions) {
		o.body = body
	}
}

// WithJSONBody marshals v as the request body and sets the content
// type. A marshal failure surfaces later as an invalid body; callers
// needing control should marshal themselves and use WithBody.
func WithJSONBody(v interface{}) RequestOption {
	return func(o *requestOptions) {
		data, err := json.Marshal(v)
		if err != nil {
			return
		}

		o.body = data
		o.headers = mergeMaps(o.headers, Headers{"Content-Type": "application/json"})
	}
}

func buildRequestOptions(opts []RequestOption) *requestOptions {
	options := &requestOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// mergeMaps combines maps left to right with later values winning on
// key conflicts. Inputs are never mutated; the result is always a
// fresh map (nil when every input is empty).
func mergeMaps(maps ...map[string]string) map[string]string {
	var result map[string]string

	for _, m := range maps {
		for key, value := range m {
			if result == nil {
				result = make(map[string]string)
			}

			result[key] = value
		}
	}

	return result
}
