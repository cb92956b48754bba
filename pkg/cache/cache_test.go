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

	// HTTPKey
	httpKey := k.HTTPKey("drive:", "abc123")
	if httpKey != "http:drive::abc123" {
		t.Errorf("HTTPKey unexpected: %s", httpKey)
	}

	// CutoutKey should include options in hash
	ck1 := k.CutoutKey("hash123", CutoutKeyOpts{Remover: "chroma", Tolerance: 0.1})
	ck2 := k.CutoutKey("hash123", CutoutKeyOpts{Remover: "chroma", Tolerance: 0.2})
	if ck1 == ck2 {
		t.Error("Different CutoutKeyOpts should produce different keys")
	}
	ck3 := k.CutoutKey("hash123", CutoutKeyOpts{Remover: "api", Tolerance: 0.1})
	if ck1 == ck3 {
		t.Error("Different removers should produce different keys")
	}

	// CompositeKey
	pk1 := k.CompositeKey("look-1", "hash123", CompositeKeyOpts{Width: 600, Height: 800})
	pk2 := k.CompositeKey("look-1", "hash123", CompositeKeyOpts{Width: 1200, Height: 1600})
	if pk1 == pk2 {
		t.Error("Different CompositeKeyOpts should produce different keys")
	}
	pk3 := k.CompositeKey("look-1", "otherhash", CompositeKeyOpts{Width: 600, Height: 800})
	if pk1 == pk3 {
		t.Error("Different arrangement hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	// All keys should be prefixed
	httpKey := scoped.HTTPKey("dropbox:", "share456")
	if httpKey != "user:123:http:dropbox::share456" {
		t.Errorf("ScopedKeyer HTTPKey unexpected: %s", httpKey)
	}

	cutoutKey := scoped.CutoutKey("hash789", CutoutKeyOpts{})
	if len(cutoutKey) < 15 || cutoutKey[:9] != "user:123:" {
		t.Errorf("ScopedKeyer CutoutKey should be prefixed: %s", cutoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.HTTPKey("test:", "key")
	if key != "prefix:http:test::key" {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	defer c.Close()

	// Miss before Set
	_, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Get before Set should miss")
	}

	// Round trip
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !hit {
		t.Fatal("Get after Set should hit")
	}
	if string(data) != "value" {
		t.Errorf("Get = %q, want %q", data, "value")
	}

	// Delete
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("Get after Delete should miss")
	}

	// Deleting an absent key is not an error
	if err := c.Delete(ctx, "absent"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}

	// Already-expired entry is treated as a miss
	if err := c.Set(ctx, "stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, err := c.Get(ctx, "stale")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("Expired entry should miss")
	}

	// Zero TTL means no expiration
	if err := c.Set(ctx, "forever", []byte("kept"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	_, hit, _ = c.Get(ctx, "forever")
	if !hit {
		t.Error("Entry with zero TTL should not expire")
	}
}

func TestFileCachePurge(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache error: %v", err)
	}
	if err := c.Set(ctx, "stale", []byte("old"), -time.Second); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "fresh", []byte("new"), time.Hour); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	if err := c.Set(ctx, "forever", []byte("kept"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}

	removed, err := c.Purge(ctx)
	if err != nil {
		t.Fatalf("Purge error: %v", err)
	}
	if removed != 1 {
		t.Errorf("Purge removed %d entries, want 1", removed)
	}

	_, hit, _ := c.Get(ctx, "fresh")
	if !hit {
		t.Error("Purge should keep unexpired entries")
	}
	_, hit, _ = c.Get(ctx, "forever")
	if !hit {
		t.Error("Purge should keep entries without expiry")
	}
}
