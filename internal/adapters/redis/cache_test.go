package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "hotel_bookings/internal/adapters/redis"
	"hotel_bookings/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_SetGetDel(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)

	var out domain.Prediction
	if ok, err := c.Get(ctx, "p:1", &out); ok || err != nil {
		t.Fatalf("expected a miss, got %v %v", ok, err)
	}

	in := domain.Prediction{ID: "abc", Label: 1, ProbNotCanceled: 0.2, ProbCanceled: 0.8}
	if err := c.Set(ctx, "p:1", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("bookings:p:1") {
		t.Fatalf("expected prefixed key in redis; keys=%v", mr.Keys())
	}
	if ttl := mr.TTL("bookings:p:1"); ttl != 60*time.Second {
		t.Fatalf("ttl = %v", ttl)
	}

	ok, err := c.Get(ctx, "p:1", &out)
	if !ok || err != nil {
		t.Fatalf("expected a hit, got %v %v", ok, err)
	}
	if out.ID != "abc" || out.Label != 1 || out.ProbCanceled != 0.8 {
		t.Fatalf("unexpected value %+v", out)
	}

	if err := c.Del(ctx, "p:1"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "p:1", &out); ok {
		t.Fatalf("expected a miss after delete")
	}
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t)
	if err := c.Set(ctx, "k", map[string]int{"a": 1}, 5); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(6 * time.Second)
	var out map[string]int
	if ok, _ := c.Get(ctx, "k", &out); ok {
		t.Fatalf("expected entry to expire")
	}
}
