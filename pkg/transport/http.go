// Package transport issues the blocking GET requests the actor layer fans
// out over. It knows nothing about the API's payloads.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Transport performs a GET and returns the status code and raw body.
// A non-nil error means no usable response was received.
type Transport interface {
	Get(ctx context.Context, rawURL string, headers map[string]string) (status int, body []byte, err error)
}

// Func adapts a function to a Transport.
type Func func(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error)

// Get calls f.
func (f Func) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	return f(ctx, rawURL, headers)
}

// DefaultTimeout bounds a single request when no client is supplied.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps how much of a response is read into memory.
const maxBodySize = 64 << 20

// HTTPOptions configures HTTP.
type HTTPOptions struct {
	// Custom HTTP client
	Client *http.Client

	// Timeout per request; ignored when Client is set
	Timeout time.Duration

	// Headers sent with every request
	Headers map[string]string

	// UserAgent overrides the default agent string
	UserAgent string
}

// HTTP is the net/http backed Transport.
type HTTP struct {
	client    *http.Client
	headers   map[string]string
	userAgent string
}

// NewHTTP creates an HTTP transport.
func NewHTTP(opts *HTTPOptions) *HTTP {
	if opts == nil {
		opts = &HTTPOptions{}
	}

	t := &HTTP{
		headers:   make(map[string]string, len(opts.Headers)),
		userAgent: opts.UserAgent,
	}
	if t.userAgent == "" {
		t.userAgent = "openclimate-go"
	}

	if opts.Client != nil {
		t.client = opts.Client
	} else {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		t.client = &http.Client{Timeout: timeout}
	}

	for k, v := range opts.Headers {
		t.headers[k] = v
	}
	return t
}

// Get fetches rawURL. Non-2xx responses are returned with their body so the
// caller can decide how to read them.
func (t *HTTP) Get(ctx context.Context, rawURL string, headers map[string]string) (int, []byte, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return 0, nil, fmt.Errorf("invalid URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)
	for k, v := range t.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read body: %w", err)
	}
	return resp.StatusCode, body, nil
}

var _ Transport = (*HTTP)(nil)
