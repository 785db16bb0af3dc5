// Package fetch is the shared JSON-over-HTTP transport for every venue
// client. It retries transient failures with backoff, maps 404 to
// domain.ErrNotFound and can enforce a minimum gap between requests.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/alanyoungcy/polyarb/internal/domain"
	"github.com/alanyoungcy/polyarb/internal/metrics"
)

// Defaults for the retry policy.
const (
	DefaultRetries        = 3
	DefaultRateLimitDelay = 10 * time.Second
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultBackoffMax     = 5 * time.Second
	DefaultNetworkDelay   = time.Second
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Client performs JSON requests with retry.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	sleep   Sleeper
	logger  *slog.Logger

	retries        int
	rateLimitDelay time.Duration
	backoffBase    time.Duration
	backoffMax     time.Duration
	networkDelay   time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithRetries sets how many times a transient failure is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.retries = n
		}
	}
}

// WithMinGap enforces at least gap between two requests issued by this
// client. Zero disables the throttle.
func WithMinGap(gap time.Duration) Option {
	return func(c *Client) {
		if gap > 0 {
			c.limiter = rate.NewLimiter(rate.Every(gap), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithSleeper replaces the wait used between retries.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) { c.sleep = s }
}

// WithDelays overrides the retry delays: the fixed wait after a 429, the base
// and cap of the exponential 5xx backoff and the wait after a network error.
func WithDelays(rateLimit, base, max, network time.Duration) Option {
	return func(c *Client) {
		c.rateLimitDelay = rateLimit
		c.backoffBase = base
		c.backoffMax = max
		c.networkDelay = network
	}
}

// New creates a Client with a 30-second per-request timeout.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http:           &http.Client{Timeout: 30 * time.Second},
		sleep:          sleepCtx,
		logger:         logger.With(slog.String("component", "fetch")),
		retries:        DefaultRetries,
		rateLimitDelay: DefaultRateLimitDelay,
		backoffBase:    DefaultBackoffBase,
		backoffMax:     DefaultBackoffMax,
		networkDelay:   DefaultNetworkDelay,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// GetJSON issues a GET and decodes a JSON response into out. An empty body
// leaves out untouched. out may be nil.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	return c.do(ctx, http.MethodGet, rawURL, header, nil, out)
}

// PostJSON marshals body, POSTs it and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, rawURL string, header http.Header, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("fetch: marshal body: %w", err)
	}
	return c.do(ctx, http.MethodPost, rawURL, header, payload, out)
}

func (c *Client) do(ctx context.Context, method, rawURL string, header http.Header, body []byte, out any) error {
	target := redact(rawURL)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("fetch: %s %s: %w", method, target, err)
			}
		}

		status, data, err := c.roundTrip(ctx, method, rawURL, header, body)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("fetch: %s %s: %w", method, target, ctx.Err())
			}
			if attempt >= c.retries {
				return fmt.Errorf("fetch: %s %s: %w", method, target, err)
			}
			if err := c.retry(ctx, target, "network", c.networkDelay, err); err != nil {
				return err
			}
			continue
		}

		switch {
		case status >= 200 && status < 300:
			if out == nil || len(bytes.TrimSpace(data)) == 0 {
				return nil
			}
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("fetch: decode %s: %w", target, err)
			}
			return nil

		case status == http.StatusNotFound:
			return fmt.Errorf("fetch: %s %s: %w", method, target, domain.ErrNotFound)

		case status == http.StatusTooManyRequests:
			if attempt >= c.retries {
				return fmt.Errorf("fetch: %s %s: %w", method, target, domain.ErrRateLimited)
			}
			if err := c.retry(ctx, target, "429", c.rateLimitDelay, nil); err != nil {
				return err
			}

		case isRetryable(status):
			if attempt >= c.retries {
				return fmt.Errorf("fetch: %s %s: %w: HTTP %d", method, target, domain.ErrUpstream, status)
			}
			if err := c.retry(ctx, target, strconv.Itoa(status), c.backoff(attempt), nil); err != nil {
				return err
			}

		case status == http.StatusUnauthorized || status == http.StatusForbidden:
			return fmt.Errorf("fetch: %s %s: %w: %s", method, target, domain.ErrUnauthorized, snippet(data))

		default:
			return fmt.Errorf("fetch: %s %s: %w: HTTP %d: %s", method, target, domain.ErrUpstream, status, snippet(data))
		}
	}
}

func (c *Client) roundTrip(ctx context.Context, method, rawURL string, header http.Header, body []byte) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

func (c *Client) retry(ctx context.Context, target, reason string, wait time.Duration, cause error) error {
	host := target
	if u, err := url.Parse(target); err == nil {
		host = u.Host
	}
	metrics.FetchRetriesTotal.WithLabelValues(host, reason).Inc()

	attrs := []any{
		slog.String("url", target),
		slog.String("reason", reason),
		slog.Duration("wait", wait),
	}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	c.logger.WarnContext(ctx, "retrying request", attrs...)

	if err := c.sleep(ctx, wait); err != nil {
		return fmt.Errorf("fetch: %s: %w", target, err)
	}
	return nil
}

// backoff returns min(backoffMax, backoffBase * 2^attempt).
func (c *Client) backoff(attempt int) time.Duration {
	d := c.backoffBase
	for i := 0; i < attempt && d < c.backoffMax; i++ {
		d *= 2
	}
	return min(d, c.backoffMax)
}

func isRetryable(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// redact drops the query string so API keys passed as parameters never reach
// logs or error messages.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

func snippet(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
