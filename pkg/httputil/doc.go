// Package httputil provides the HTTP plumbing for fetching connection
// payloads from host endpoints.
//
// # Overview
//
// The engine never invents data; hosts expose an endpoint that returns the
// connection payload JSON for a source document, and this package fetches
// it:
//
//   - [Client]: Payload fetching with retry and response caching
//   - [Cache]: File-based HTTP response caching
//   - [Retry]: Automatic retry with exponential backoff
//
// # Caching
//
// [Cache] stores HTTP responses in the filesystem (~/.cache/constel/) with
// configurable TTL, so repeated views of the same document skip the
// upstream round trip.
//
// Usage:
//
//	cache, err := httputil.NewCache("", time.Hour)
//	data, ok := cache.Get("payload:doc-42", &payload)
//	if !ok {
//	    payload = fetchFromHost()
//	    cache.Set("payload:doc-42", payload)
//	}
//
// # Retry
//
// [Retry] wraps requests with automatic retry for transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// It uses exponential backoff:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return doRequest()
//	})
//
// # Configuration
//
// Default settings are suitable for most use cases:
//
//   - Cache directory: ~/.cache/constel/
//   - Default TTL: 1 hour
//   - Max retries: 3
//   - Base backoff: 1 second
//
// The cache can be cleared via `constel cache clear` or by deleting the
// cache directory.
package httputil
