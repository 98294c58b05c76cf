package cache

import (
	"context"
	"testing"
	"time"
)

// TestMemoryCacheSetAndGet verifies the basic round trip
func TestMemoryCacheSetAndGet(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, ok, err := mc.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("Expected a cache hit")
	}
	if string(value) != "v" {
		t.Errorf("Expected 'v', got %q", value)
	}
}

// TestMemoryCacheMiss verifies an unknown key reports a miss, not an error
func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()

	_, ok, err := mc.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected a miss")
	}
}

// TestMemoryCacheExpiry verifies entries expire after their TTL
func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	if err := mc.Set(ctx, "k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok, _ := mc.Get(ctx, "k"); ok {
		t.Error("Expected entry to have expired")
	}
}

// TestMemoryCacheDelete verifies explicit removal
func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", []byte("v"), time.Minute)
	if err := mc.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := mc.Get(ctx, "k"); ok {
		t.Error("Expected entry to be deleted")
	}

	// Deleting a missing key is not an error
	if err := mc.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

// TestMemoryCacheClear verifies all entries are dropped
func TestMemoryCacheClear(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", []byte("1"), time.Minute)
	_ = mc.Set(ctx, "b", []byte("2"), time.Minute)

	if err := mc.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok, _ := mc.Get(ctx, key); ok {
			t.Errorf("Expected %s to be cleared", key)
		}
	}
}

// TestMemoryCacheGetReturnsCopy verifies callers cannot mutate cached
// storage through the returned slice
func TestMemoryCacheGetReturnsCopy(t *testing.T) {
	mc := NewMemoryCache()
	ctx := context.Background()

	_ = mc.Set(ctx, "k", []byte("abc"), time.Minute)

	value, _, _ := mc.Get(ctx, "k")
	value[0] = 'x'

	fresh, _, _ := mc.Get(ctx, "k")
	if string(fresh) != "abc" {
		t.Errorf("Cached value was mutated through a read: %q", fresh)
	}
}

// TestKey verifies cache keys are stable for equal arguments and
// distinct for different ones
func TestKey(t *testing.T) {
	a := Key("qa", "what is this?")
	b := Key("qa", "what is this?")
	c := Key("qa", "something else")

	if a != b {
		t.Errorf("Expected stable keys, got %s vs %s", a, b)
	}
	if a == c {
		t.Error("Expected different keys for different arguments")
	}
	if a[:3] != "qa:" {
		t.Errorf("Expected prefix 'qa:', got %s", a)
	}
}
