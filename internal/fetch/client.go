// Package fetch is the shared HTTP layer for producers: cached, per-host
// rate-limited GETs with bounded timeouts and retry on transient failures.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// defaultUserAgents is rotated across requests when the caller sets none.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Options configures a Client.
type Options struct {
	Timeout         time.Duration
	MinHostInterval time.Duration // spacing between requests to one host
	MaxRetries      int
	UserAgents      []string
	Cache           Cache // nil disables caching
	CacheTTL        time.Duration
}

// Client wraps http.Client with the behaviors every site scraper needs and
// should not reimplement.
type Client struct {
	http *http.Client
	opts Options

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// New creates a fetch client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MinHostInterval <= 0 {
		opts.MinHostInterval = time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = defaultUserAgents
	}
	return &Client{
		http:     &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		limiters: map[string]*rate.Limiter{},
	}
}

// StatusError is a non-2xx response. 4xx statuses are permanent and not
// retried; 5xx statuses are retried with backoff.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (c *Client) hostLimiter(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Every(c.opts.MinHostInterval), 1)
		c.limiters[host] = l
	}
	return l
}

// Get fetches a URL, honoring the cache, the per-host limiter, and the retry
// policy, and returns the response body.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: invalid url %q: %w", rawURL, err)
	}

	key := cacheKey(http.MethodGet, rawURL)
	if c.opts.Cache != nil {
		if body, ok, err := c.opts.Cache.Get(ctx, key); err == nil && ok {
			return body, nil
		}
	}

	if err := c.hostLimiter(u.Host).Wait(ctx); err != nil {
		return nil, err
	}

	op := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if req.Header.Get("User-Agent") == "" {
			req.Header.Set("User-Agent", c.opts.UserAgents[rand.Intn(len(c.opts.UserAgents))])
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			serr := &StatusError{URL: rawURL, Status: resp.StatusCode}
			if resp.StatusCode >= 500 {
				return nil, serr
			}
			return nil, backoff.Permanent(serr)
		}
		return io.ReadAll(resp.Body)
	}

	bo := backoff.WithMaxRetries(backoff.WithContext(backoff.NewExponentialBackOff(), ctx), uint64(c.opts.MaxRetries))
	body, err := backoff.RetryWithData(op, bo)
	if err != nil {
		return nil, err
	}

	if c.opts.Cache != nil {
		if err := c.opts.Cache.Set(ctx, key, body, c.opts.CacheTTL); err != nil {
			// Cache writes are best effort; the fetch already succeeded.
			return body, nil
		}
	}
	return body, nil
}

// GetJSON fetches a URL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, header http.Header, v any) error {
	body, err := c.Get(ctx, rawURL, header)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("fetch: decode %s: %w", rawURL, err)
	}
	return nil
}
