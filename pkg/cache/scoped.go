package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation. The
// server uses it to keep per-tenant graph caches apart; the CLI uses it to
// separate profiles sharing one cache directory.
//
// Example usage:
//
//	// Tenant-specific keys
//	tenantKeyer := NewScopedKeyer(NewDefaultKeyer(), "tenant:abc123:")
//
//	// Global keys
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// GraphKey generates a prefixed key for normalized graph caching.
func (k *ScopedKeyer) GraphKey(payloadHash string) string {
	return k.prefix + k.inner.GraphKey(payloadHash)
}

// LayoutKey generates a prefixed key for settled layout caching.
func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

// FrameKey generates a prefixed key for rendered frame caching.
func (k *ScopedKeyer) FrameKey(layoutHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(layoutHash, opts)
}
