// Package cache provides content-addressed caching for the visualization
// pipeline.
//
// Three kinds of entries are cached, one per pipeline stage: normalized
// graphs (keyed by payload content), settled layouts (keyed by graph hash
// plus simulation parameters), and rendered frames (keyed by layout hash
// plus render parameters). Keys are content hashes, so a changed payload or
// parameter can never serve a stale entry.
//
// Backends: [FileCache] for CLI usage, [RedisCache] for the shared server,
// [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// TTLs per entry kind. Graphs are cheap to rebuild but payloads rarely
// change; layouts and frames derive from hashed inputs and could live
// forever, bounded only to keep backends tidy.
const (
	TTLGraph  = 24 * time.Hour
	TTLLayout = 7 * 24 * time.Hour
	TTLFrame  = 7 * 24 * time.Hour

	// TTLHTTP bounds cached upstream payload responses.
	TTLHTTP = time.Hour
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was present
	// and unexpired; an error is returned only for backend failures, never
	// for misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the simulation parameters that shape a settled layout.
// Any field change produces a different key.
type LayoutKeyOpts struct {
	ViewportWidth  float64
	ViewportHeight float64
	SimHash        string // hash of the sim options block
}

// FrameKeyOpts are the render parameters that shape a painted frame.
type FrameKeyOpts struct {
	Format  string
	Width   float64
	Height  float64
	Loading bool
}

// Keyer generates cache keys for each pipeline stage.
type Keyer interface {
	// HTTPKey keys a cached upstream HTTP response.
	HTTPKey(namespace, key string) string

	// GraphKey keys a normalized graph by its payload content hash.
	GraphKey(payloadHash string) string

	// LayoutKey keys a settled layout by graph hash and sim parameters.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string

	// FrameKey keys a rendered frame by layout hash and render parameters.
	FrameKey(layoutHash string, opts FrameKeyOpts) string
}

// DefaultKeyer generates hash-based keys with stage prefixes.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey("http:"+namespace, key)
}

// GraphKey generates a key for normalized graph caching.
func (k *DefaultKeyer) GraphKey(payloadHash string) string {
	return hashKey("graph", payloadHash)
}

// LayoutKey generates a key for settled layout caching.
func (k *DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// FrameKey generates a key for rendered frame caching.
func (k *DefaultKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return hashKey("frame", layoutHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
