// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/oci-engine/pkg/types"
)

// DefaultUserAgent identifies the resolver to upstream services.
const DefaultUserAgent = "OCI / OpenCitations (via OpenCitations - http://opencitations.net; mailto:contact@opencitations.net)"

// DefaultTimeout bounds a single request when the config leaves it unset.
const DefaultTimeout = 30 * time.Second

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 200 status.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Client wraps an *http.Client with the user agent, per-request timeout and
// per-host rate limiting every component shares.
type Client struct {
	http       *http.Client
	userAgent  string
	timeout    time.Duration
	perHost    rate.Limit
	maxRetries int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client. Tests pass the
// httptest server client here.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New builds a Client from cfg.
func New(cfg types.HTTPConfig, opts ...Option) *Client {
	c := &Client{
		http:       &http.Client{},
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		perHost:    rate.Limit(cfg.RatePerHost),
		maxRetries: cfg.MaxRetries,
		limiters:   make(map[string]*rate.Limiter),
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) limiter(host string) *rate.Limiter {
	if c.perHost <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.limiters[host]
	if !ok {
		l = rate.NewLimiter(c.perHost, 1)
		c.limiters[host] = l
	}
	return l
}

// Get issues one GET request and reads the whole body. Non-200 statuses
// are returned as responses, not errors.
func (c *Client) Get(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return c.get(ctx, rawURL, header, false)
}

// GetWithRetry is Get with DoWithRetry's 429 backoff. The resolver never
// calls it; batch enrichment does.
func (c *Client) GetWithRetry(ctx context.Context, rawURL string, header http.Header) (*Response, error) {
	return c.get(ctx, rawURL, header, true)
}

func (c *Client) get(ctx context.Context, rawURL string, header http.Header, retry bool) (*Response, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "parsing %s", rawURL)
	}
	if l := c.limiter(u.Host); l != nil {
		if err := l.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "rate limiter")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "building request for %s", rawURL)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("User-Agent", c.userAgent)

	zap.L().Debug("http get", zap.String("url", rawURL))

	var resp *http.Response
	if retry {
		resp, err = DoWithRetry(ctx, c.http, req, c.maxRetries)
	} else {
		resp, err = c.http.Do(req)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "fetching %s", rawURL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "reading body of %s", rawURL)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
