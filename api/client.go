// Package api implements the remote access port: an authenticated JSON
// HTTP client for the Olympus backend with a classified error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/olympus-platform/client-go/metrics"
	"github.com/olympus-platform/client-go/pkg/logger"
)

const maxResponseBytes = 8 << 20

// Remote is the capability the SDK's state machinery consumes: one JSON
// request/response round trip. *Client is the production implementation;
// tests substitute recording fakes.
type Remote interface {
	Do(ctx context.Context, method, path string, body interface{}, query url.Values) ([]byte, error)
}

// Config configures the API client.
type Config struct {
	BaseURL string
	Timeout time.Duration

	// RequestsPerSecond caps outbound request rate; zero disables the
	// limiter.
	RequestsPerSecond float64
	Burst             int

	Logger *logger.Logger
}

// Client is an HTTP implementation of Remote. It attaches a bearer token
// from the configured token source, a request ID to every request, and an
// idempotency key to every mutating request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	log        *logger.Logger

	mu          sync.RWMutex
	tokenSource func() string
}

var _ Remote = (*Client)(nil)

// NewClient creates a client for the given base URL.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst == 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewDefault("api")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    limiter,
		log:        log,
	}, nil
}

// SetTokenSource installs the function that yields the current access
// token. An empty return means no Authorization header is attached.
func (c *Client) SetTokenSource(fn func() string) {
	c.mu.Lock()
	c.tokenSource = fn
	c.mu.Unlock()
}

func (c *Client) token() string {
	c.mu.RLock()
	fn := c.tokenSource
	c.mu.RUnlock()
	if fn == nil {
		return ""
	}
	return fn()
}

// Do executes one JSON round trip. A non-2xx response or transport failure
// is returned as a *Error; the raw response body is returned on success.
func (c *Client) Do(ctx context.Context, method, path string, body interface{}, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindTimeout, Message: "rate limit wait aborted", cause: err}
		}
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Idempotency-Key", uuid.NewString())
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		classified := classifyTransport(err)
		metrics.ObserveRequest(method, string(classified.Kind), time.Since(start))
		c.log.WithError(err).WithField("path", path).Debug("request failed")
		return nil, classified
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.ObserveRequest(method, string(KindNetwork), time.Since(start))
		return nil, &Error{Kind: KindNetwork, Message: "read response body", cause: err}
	}

	if resp.StatusCode >= 400 {
		apiErr := parseError(respBody, resp.StatusCode)
		metrics.ObserveRequest(method, string(apiErr.Kind), time.Since(start))
		return nil, apiErr
	}

	metrics.ObserveRequest(method, "ok", time.Since(start))
	return respBody, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.Do(ctx, http.MethodGet, path, nil, query)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.Do(ctx, http.MethodPost, path, body, nil)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	return c.Do(ctx, http.MethodPut, path, body, nil)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) ([]byte, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// classifyTransport maps a transport failure to a timeout or network error.
func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: "request deadline exceeded", cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindNetwork, Message: "request canceled", cause: err}
	}
	return &Error{Kind: KindNetwork, Message: "no response received", cause: err}
}
