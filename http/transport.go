// Package http provides net/http based implementations of linkpub.Transport
// and middleware that serves dispenser links to HTTP handlers.
package http

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"

	"github.com/fwojciec/linkpub"
)

// Ensure transports implement linkpub.Transport at compile time.
var (
	_ linkpub.Transport = (*Call)(nil)
	_ linkpub.Transport = (*Client)(nil)
)

type config struct {
	timeout   time.Duration
	userAgent string
}

// Option configures a Call or Client transport.
type Option func(*config)

// WithTimeout sets the timeout for dispenser requests.
// Defaults to linkpub.DefaultConnectTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
// Defaults to linkpub.DefaultUserAgent if not specified.
func WithUserAgent(ua string) Option {
	return func(c *config) {
		c.userAgent = ua
	}
}

func newConfig(opts []Option) config {
	c := config{
		timeout:   linkpub.DefaultConnectTimeout,
		userAgent: linkpub.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Call is the high-level fetch strategy: a single one-shot GET whose
// timeout covers the whole exchange.
type Call struct {
	client    *http.Client
	userAgent string
}

// NewCall creates a new Call transport.
func NewCall(opts ...Option) *Call {
	cfg := newConfig(opts)
	return &Call{
		client: &http.Client{
			Timeout:       cfg.timeout,
			CheckRedirect: noRedirect,
		},
		userAgent: cfg.userAgent,
	}
}

// Fetch performs one conditional GET.
func (c *Call) Fetch(ctx context.Context, host, path, validator string) linkpub.Outcome {
	return fetch(ctx, c.client, c.userAgent, host, path, validator)
}

// Client is the full-featured client strategy: a dedicated http.Client
// whose timeout bounds connection setup only. Once connected, reading the
// response is bounded only by the request context; callers that need an
// overall deadline set one on ctx.
type Client struct {
	client    *http.Client
	userAgent string
}

// NewClient creates a new Client transport.
func NewClient(opts ...Option) *Client {
	cfg := newConfig(opts)
	dialer := &net.Dialer{Timeout: cfg.timeout}
	return &Client{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				TLSHandshakeTimeout: cfg.timeout,
				MaxIdleConns:        4,
				IdleConnTimeout:     30 * time.Second,
			},
			CheckRedirect: noRedirect,
		},
		userAgent: cfg.userAgent,
	}
}

// Fetch performs one conditional GET.
func (c *Client) Fetch(ctx context.Context, host, path, validator string) linkpub.Outcome {
	return fetch(ctx, c.client, c.userAgent, host, path, validator)
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// noRedirect hands 3xx responses back to the caller so they classify as
// unexpected statuses, as they do for the raw socket transport.
func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func fetch(ctx context.Context, client *http.Client, userAgent, host, path, validator string) linkpub.Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+host+path, nil)
	if err != nil {
		return linkpub.Failure(linkpub.ReasonTransportInit)
	}
	req.Header.Set("User-Agent", userAgent)
	if validator != "" {
		req.Header.Set("If-Modified-Since", validator)
	}

	// Distinguishes "could not connect" from "connected but got no
	// parsable response".
	var connected atomic.Bool
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), &httptrace.ClientTrace{
		GotConn: func(httptrace.GotConnInfo) { connected.Store(true) },
	}))

	resp, err := client.Do(req)
	if err != nil {
		if connected.Load() {
			return linkpub.Failure(linkpub.ReasonNoStatusLine)
		}
		return linkpub.Failure(linkpub.ReasonTransportInit)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return linkpub.Failure(linkpub.ReasonNoData)
	}

	return linkpub.ClassifyStatus(resp.StatusCode, body, resp.Header.Get("Last-Modified"))
}
