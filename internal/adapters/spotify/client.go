// Package spotify implements the catalog ports against the Spotify Web API.
package spotify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ewilliams-labs/encore/internal/core/ports"
)

const (
	// DefaultBaseURL is the Spotify Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1"

	// playlistPageSize and featureBatchSize are the API maxima per request.
	playlistPageSize = 100
	featureBatchSize = 100
	addTracksBatch   = 100
	userPlaylistPage = 50

	defaultMaxPages = 1000
)

// Client is an HTTP client for the Spotify adapter. The wrapped http.Client
// is expected to authenticate requests, e.g. an oauth2 client.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	maxRetries  int
	baseBackoff time.Duration
	maxPages    int
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[*http.Response]
	logger      *zap.Logger
}

// compile-time interface assertion
var _ ports.Catalog = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithRetry sets the attempt budget and base backoff for retried requests.
func WithRetry(maxRetries int, baseBackoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseBackoff = baseBackoff
	}
}

// WithLimiter paces outbound requests. The limiter is usually shared by
// every per-user client.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithBreaker guards requests with a shared circuit breaker.
func WithBreaker(cb *gobreaker.CircuitBreaker[*http.Response]) Option {
	return func(c *Client) { c.breaker = cb }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l.Named("spotify") }
}

// WithMaxPages bounds how many pages a paginated listing may follow.
func WithMaxPages(n int) Option {
	return func(c *Client) { c.maxPages = n }
}

// NewClient constructs a new Spotify client.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		httpClient:  httpClient,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxRetries:  defaultMaxRetries,
		baseBackoff: defaultBackoff,
		maxPages:    defaultMaxPages,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is a non-success response from the Spotify API.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("spotify adapter: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("spotify adapter: %s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Unauthorized reports whether the user's token was rejected.
func (e *StatusError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}
	return c.do(req, out, http.StatusOK)
}

func (c *Client) postJSON(ctx context.Context, url string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("spotify adapter: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out, http.StatusOK, http.StatusCreated)
}

func (c *Client) do(req *http.Request, out any, okStatus ...int) error {
	resp, err := c.doRequestWithRetry(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	ok := false
	for _, s := range okStatus {
		if resp.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		return statusError(req, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("spotify adapter: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func statusError(req *http.Request, resp *http.Response) error {
	se := &StatusError{Method: req.Method, URL: req.URL.Path, StatusCode: resp.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var apiErr spotifyErrorResponse
	if json.Unmarshal(body, &apiErr) == nil {
		se.Message = apiErr.Error.Message
	}
	return se
}
