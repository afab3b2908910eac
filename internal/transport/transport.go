// Package transport wraps a single outbound request/response exchange
// with retry, backoff, and timeout policy.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/resttree-io/resttree/internal/constants"
)

// Logger receives transport-level log events. It matches the logger
// surface of the public package so the client can adapt between them.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// retryStatuses is the fixed set of response statuses that trigger a
// retry, regardless of verb.
var retryStatuses = map[int]bool{
	http.StatusRequestEntityTooLarge: true,
	http.StatusTooManyRequests:       true,
	http.StatusInternalServerError:   true,
	http.StatusBadGateway:            true,
	http.StatusServiceUnavailable:    true,
	http.StatusGatewayTimeout:        true,
}

// idempotentMethods per RFC 9110. Consulted only when the adapter is
// configured with WithIdempotentOnly.
var idempotentMethods = map[string]bool{
	http.MethodHead:    true,
	http.MethodGet:     true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// Adapter dispatches HTTP exchanges through go-retryablehttp with a
// status-driven retry policy and a default per-attempt timeout.
type Adapter struct {
	client         *retryablehttp.Client
	backoffFactor  time.Duration
	backoffMax     time.Duration
	idempotentOnly bool
	logger         Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithRetryMax sets the number of retry attempts after the initial try.
func WithRetryMax(n int) Option {
	return func(a *Adapter) {
		a.client.RetryMax = n
	}
}

// WithBackoffFactor sets the base unit for exponential backoff
// (sleep = factor * 2^attempt).
func WithBackoffFactor(factor time.Duration) Option {
	return func(a *Adapter) {
		a.backoffFactor = factor
	}
}

// WithBackoffMax caps the delay between attempts.
func WithBackoffMax(max time.Duration) Option {
	return func(a *Adapter) {
		a.backoffMax = max
	}
}

// WithTimeout sets the default per-attempt timeout applied when the
// request context carries no deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Adapter) {
		a.client.HTTPClient.Timeout = timeout
	}
}

// WithIdempotentOnly restricts retries to idempotent verbs. The default
// policy retries every verb, POST and PATCH included; this option is
// the opt-in gate for callers that cannot tolerate replayed writes.
func WithIdempotentOnly() Option {
	return func(a *Adapter) {
		a.idempotentOnly = true
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
		a.client.Logger = &leveledLogger{logger: logger}
	}
}

// WithHTTPClient substitutes the underlying *http.Client used for each
// attempt. The default timeout is preserved unless the replacement sets
// its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(a *Adapter) {
		if httpClient.Timeout == 0 {
			httpClient.Timeout = a.client.HTTPClient.Timeout
		}

		a.client.HTTPClient = httpClient
	}
}

// New creates a transport adapter with the default policy: 10 retry
// attempts on {413, 429, 500, 502, 503, 504} for every verb, backoff
// factor of one second, and a 5 second per-attempt timeout for
// requests whose context carries no deadline.
func New(opts ...Option) *Adapter {
	adapter := &Adapter{
		backoffFactor: constants.DefaultBackoffFactor,
		backoffMax:    constants.DefaultBackoffMax,
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.HTTPClient = &http.Client{Timeout: constants.DefaultSendTimeout}
	retryClient.Logger = nil
	retryClient.CheckRetry = adapter.checkRetry
	retryClient.Backoff = adapter.backoff
	// Exhausted retries hand back the final response unchanged instead
	// of a synthetic "giving up" error.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	adapter.client = retryClient

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// Send performs one logical exchange, retrying per policy. The request
// body is rewound between attempts by retryablehttp. Connection
// failures and timeouts are returned as-is without retry; only
// retryable response statuses consume the retry budget.
//
// The per-attempt timeout is a default, not a ceiling: when ctx
// carries a deadline, the deadline governs and the timeout is not
// applied.
func (a *Adapter) Send(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	if header != nil {
		req.Header = header
	}

	return a.clientFor(ctx).Do(req)
}

// clientFor picks the retry client for one exchange. A caller-supplied
// context deadline supersedes the default per-attempt timeout, so the
// exchange runs through a copy whose underlying http.Client carries no
// timeout of its own. Without a deadline the configured default
// applies per attempt.
func (a *Adapter) clientFor(ctx context.Context) *retryablehttp.Client {
	if _, ok := ctx.Deadline(); !ok || a.client.HTTPClient.Timeout == 0 {
		return a.client
	}

	httpClient := *a.client.HTTPClient
	httpClient.Timeout = 0

	scoped := retryablehttp.NewClient()
	scoped.HTTPClient = &httpClient
	scoped.RetryMax = a.client.RetryMax
	scoped.Logger = a.client.Logger
	scoped.CheckRetry = a.checkRetry
	scoped.Backoff = a.backoff
	scoped.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return scoped
}

// checkRetry implements the status/verb driven retry policy. Errors
// from the network layer are never retried here; they propagate to the
// caller so the client layer can classify them.
func (a *Adapter) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil {
		return false, err
	}

	if resp == nil || !retryStatuses[resp.StatusCode] {
		return false, nil
	}

	if a.idempotentOnly && resp.Request != nil && !idempotentMethods[resp.Request.Method] {
		return false, nil
	}

	return true, nil
}

// backoff sleeps factor * 2^attempt between tries, capped at the
// configured maximum. The min/max arguments from retryablehttp are
// ignored in favor of the adapter's own tunables.
func (a *Adapter) backoff(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
	delay := a.backoffFactor
	for i := 0; i < attemptNum; i++ {
		delay *= 2
		if delay >= a.backoffMax {
			return a.backoffMax
		}
	}

	return delay
}

// leveledLogger adapts Logger to retryablehttp's LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, fieldsFrom(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, fieldsFrom(keysAndValues))
}

func fieldsFrom(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
