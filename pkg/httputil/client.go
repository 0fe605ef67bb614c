package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/constelviz/constel/pkg/graph"
)

// maxPayloadBytes bounds a single payload response. Connection payloads are
// small; anything larger indicates a misbehaving endpoint.
const maxPayloadBytes = 4 << 20

// Client fetches connection payloads from a host endpoint.
//
// The zero value is not usable - use [NewClient]. A nil response cache
// disables caching.
type Client struct {
	http  *http.Client
	cache *Cache
	token string
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// WithResponseCache caches raw payload responses by URL.
func WithResponseCache(cache *Cache) ClientOption {
	return func(c *Client) { c.cache = cache }
}

// WithBearerToken sends the token on every request, for hosts that protect
// their payload endpoints.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) { c.token = token }
}

// NewClient creates a payload client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPayload GETs the payload JSON at url and decodes it. Transient
// failures (network errors, 5xx, 429) retry with backoff; anything else
// fails immediately. With a response cache configured, a fresh cached
// response short-circuits the request entirely.
func (c *Client) FetchPayload(ctx context.Context, url string) (graph.Payload, error) {
	if c.cache != nil {
		var cached []byte
		if ok, err := c.cache.Get("payload:"+url, &cached); ok && err == nil {
			if p, err := graph.DecodePayload(cached); err == nil {
				return p, nil
			}
			// Corrupt cached body; fall through to refetch.
		}
	}

	var body []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		body, err = c.fetch(ctx, url)
		return err
	})
	if err != nil {
		return graph.Payload{}, fmt.Errorf("fetch payload from %s: %w", url, err)
	}

	p, err := graph.DecodePayload(body)
	if err != nil {
		return graph.Payload{}, err
	}
	if c.cache != nil {
		_ = c.cache.Set("payload:"+url, body)
	}
	return p, nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to read.
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	default:
		return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, &RetryableError{Err: err}
	}
	if len(body) > maxPayloadBytes {
		return nil, fmt.Errorf("payload exceeds %d bytes", maxPayloadBytes)
	}
	return body, nil
}
