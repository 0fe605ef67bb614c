package cache

import (
	"context"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "frame-key", []byte("<svg/>"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "frame-key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit || string(data) != "<svg/>" {
		t.Errorf("Get = %q, hit=%v", data, hit)
	}

	if err := c.Delete(ctx, "frame-key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "frame-key"); hit {
		t.Error("key survived Delete")
	}

	// Deleting an absent key is not an error
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("expired entry served as hit")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	// GraphKey varies with payload content
	gk1 := k.GraphKey("payloadhash-a")
	gk2 := k.GraphKey("payloadhash-b")
	if gk1 == gk2 {
		t.Error("Different payload hashes should produce different keys")
	}

	// LayoutKey should include sim parameters in hash
	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{ViewportWidth: 800, ViewportHeight: 600})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{ViewportWidth: 1024, ViewportHeight: 600})
	if lk1 == lk2 {
		t.Error("Different LayoutKeyOpts should produce different keys")
	}
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{ViewportWidth: 800, ViewportHeight: 600, SimHash: "x"})
	if lk1 == lk3 {
		t.Error("Different sim hashes should produce different keys")
	}

	// FrameKey
	fk1 := k.FrameKey("hash123", FrameKeyOpts{Format: "svg"})
	fk2 := k.FrameKey("hash123", FrameKeyOpts{Format: "png"})
	if fk1 == fk2 {
		t.Error("Different FrameKeyOpts should produce different keys")
	}

	// HTTPKey separates namespaces sharing a raw key
	hk1 := k.HTTPKey("payloads", "https://example.com/doc")
	hk2 := k.HTTPKey("docs", "https://example.com/doc")
	if hk1 == hk2 {
		t.Error("Different namespaces should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "tenant:123:")

	// All keys should be prefixed
	graphKey := scoped.GraphKey("payloadhash")
	if len(graphKey) < 15 || graphKey[:11] != "tenant:123:" {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", graphKey)
	}
	if scoped.GraphKey("payloadhash") != "tenant:123:"+inner.GraphKey("payloadhash") {
		t.Error("ScopedKeyer should delegate to the inner keyer")
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.GraphKey("x")
	if key[:7] != "prefix:" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}
