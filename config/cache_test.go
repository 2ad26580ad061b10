package config

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func withTestCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	Cache = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { Cache = nil })
	return mr
}

func TestCacheRoundTrip(t *testing.T) {
	withTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	CacheSet(ctx, "test_key", payload{Name: "Pest", Count: 5}, time.Minute)

	var got payload
	if !CacheGet(ctx, "test_key", &got) {
		t.Fatal("expected cache hit")
	}
	if got.Name != "Pest" || got.Count != 5 {
		t.Errorf("unexpected value: %+v", got)
	}

	CacheDelete(ctx, "test_key")
	if CacheGet(ctx, "test_key", &got) {
		t.Error("expected miss after delete")
	}
}

func TestCacheGetMiss(t *testing.T) {
	withTestCache(t)

	var got map[string]int
	if CacheGet(context.Background(), "absent", &got) {
		t.Error("expected miss for absent key")
	}
}

func TestCacheGetDropsCorruptValue(t *testing.T) {
	mr := withTestCache(t)
	ctx := context.Background()

	if err := mr.Set("broken", "{not json"); err != nil {
		t.Fatalf("failed to seed value: %v", err)
	}

	var got map[string]int
	if CacheGet(ctx, "broken", &got) {
		t.Error("expected miss for corrupt value")
	}
	if mr.Exists("broken") {
		t.Error("expected corrupt value deleted")
	}
}

func TestCacheDisabled(t *testing.T) {
	Cache = nil

	ctx := context.Background()
	CacheSet(ctx, "k", "v", time.Minute)
	CacheDelete(ctx, "k")

	var got string
	if CacheGet(ctx, "k", &got) {
		t.Error("expected miss when cache disabled")
	}
}

func TestCacheExpiry(t *testing.T) {
	mr := withTestCache(t)
	ctx := context.Background()

	CacheSet(ctx, "expiring", 42, time.Second)
	mr.FastForward(2 * time.Second)

	var got int
	if CacheGet(ctx, "expiring", &got) {
		t.Error("expected miss after TTL")
	}
}
