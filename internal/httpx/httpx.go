package httpx

import (
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when the caller does not set one. Yahoo rejects
// requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (compatible; stockdash/1.0)"

// Options tunes the outbound client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	Headers   map[string]string
}

// Client is a small wrapper around http.Client that applies default headers.
// It satisfies the Do(*http.Request) contract used by the upstream clients.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Headers   map[string]string
}

func New(opts Options) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 3 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   3 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: 5 * time.Second,
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Client{
		HTTP:      &http.Client{Timeout: opts.Timeout, Transport: transport},
		UserAgent: ua,
		Headers:   opts.Headers,
	}
}

// Do sends req after filling in any headers the caller left empty.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.applyDefaults(req)
	return c.HTTP.Do(req)
}

// Standard returns an *http.Client sharing the transport and timeout that
// applies the same default headers, for libraries that only accept one.
func (c *Client) Standard() *http.Client {
	return &http.Client{
		Timeout:   c.HTTP.Timeout,
		Transport: &defaultsTransport{base: c.HTTP.Transport, c: c},
	}
}

func (c *Client) applyDefaults(req *http.Request) {
	if c.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range c.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
}

type defaultsTransport struct {
	base http.RoundTripper
	c    *Client
}

func (t *defaultsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	t.c.applyDefaults(r)
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(r)
}
