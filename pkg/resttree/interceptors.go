package resttree

import (
	"context"
	"fmt"
	"net/http"
)

// RequestInfo describes an outbound exchange as seen by interceptors.
// Header mutations made by request interceptors are sent on the wire.
type RequestInfo struct {
	Method  Method
	URL     string
	Headers http.Header
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *RequestInfo) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *RequestInfo, resp *Response) error

// InterceptorChain holds the hooks run around every exchange, in
// registration order.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain returns an empty chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{}
}

// AddRequestInterceptor appends a pre-send hook.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor appends a post-receive hook.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// ExecuteRequestInterceptors runs the pre-send hooks, stopping at the
// first failure.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *RequestInfo) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs the post-receive hooks, stopping at
// the first failure.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *RequestInfo, resp *Response) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs outbound requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(_ context.Context, req *RequestInfo) error {
		logger.Debug("HTTP Request", map[string]interface{}{
			"method": string(req.Method),
			"url":    req.URL,
		})

		return nil
	}
}

// LoggingResponseInterceptor logs received responses.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(_ context.Context, req *RequestInfo, resp *Response) error {
		logger.Debug("HTTP Response", map[string]interface{}{
			"method":      string(req.Method),
			"url":         req.URL,
			"status_code": resp.StatusCode,
		})

		return nil
	}
}

// HeaderInterceptor adds fixed headers to every request.
func HeaderInterceptor(headers Headers) RequestInterceptor {
	return func(_ context.Context, req *RequestInfo) error {
		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}
