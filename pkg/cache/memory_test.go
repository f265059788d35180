package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

type statusRecord struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestMemoryCacheRoundTripStruct(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	if err := mc.Set(ctx, "job:1", statusRecord{ID: "1", Status: "running"}, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	var got statusRecord
	if err := mc.Get(ctx, "job:1", &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != "running" {
		t.Fatalf("unexpected status %q", got.Status)
	}
}

func TestMemoryCacheMissAndExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	var s string
	if err := mc.Get(ctx, "absent", &s); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected miss, got %v", err)
	}

	_ = mc.Set(ctx, "short", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	if ok, _ := mc.Exists(ctx, "short"); ok {
		t.Fatalf("expected expired key to be gone")
	}
}

func TestMemoryCacheTryLock(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	ok, _ := mc.TryLock(ctx, "lock:AAPL", "a", time.Minute)
	if !ok {
		t.Fatalf("expected first lock to succeed")
	}
	ok, _ = mc.TryLock(ctx, "lock:AAPL", "b", time.Minute)
	if ok {
		t.Fatalf("expected second lock to fail")
	}
	if released, _ := mc.Unlock(ctx, "lock:AAPL", "b"); released {
		t.Fatalf("expected unlock by non-owner to be ignored")
	}
	if released, _ := mc.Unlock(ctx, "lock:AAPL", "a"); !released {
		t.Fatalf("expected owner unlock to succeed")
	}
	ok, _ = mc.TryLock(ctx, "lock:AAPL", "b", time.Minute)
	if !ok {
		t.Fatalf("expected lock after unlock")
	}
}

func TestMemoryCacheEvictsLRU(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	ctx := context.Background()

	_ = mc.Set(ctx, "a", "1", 0)
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "b", "2", 0)
	time.Sleep(time.Millisecond)
	var s string
	_ = mc.Get(ctx, "a", &s) // touch a so b becomes oldest
	time.Sleep(time.Millisecond)
	_ = mc.Set(ctx, "c", "3", 0)

	if ok, _ := mc.Exists(ctx, "b"); ok {
		t.Fatalf("expected b to be evicted")
	}
	if ok, _ := mc.Exists(ctx, "a", "c"); !ok {
		t.Fatalf("expected a and c to remain")
	}
}

func TestKeySkipsEmptyParts(t *testing.T) {
	if got := Key("sentipull", "", "lock", "AAPL:2024-01-01:2024-01-31"); got != "sentipull:lock:AAPL:2024-01-01:2024-01-31" {
		t.Fatalf("unexpected key %q", got)
	}
}
