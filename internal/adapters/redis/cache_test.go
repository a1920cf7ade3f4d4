package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "tour_dataset/internal/adapters/redis"
	"tour_dataset/internal/domain"
)

func newCache(t *testing.T) (*redisad.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_MissSetHit(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	var got domain.Snapshot
	ok, err := c.Get(ctx, "snapshot:Meal:m-1", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	want := domain.Snapshot{EntityID: "m-1", EntityType: domain.EntityMeal, LastEventID: 7, Data: map[string]any{"title": "All inclusive"}}
	if err := c.Set(ctx, "snapshot:Meal:m-1", want, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("tours:snapshot:Meal:m-1") {
		t.Fatalf("expected prefixed key in redis, keys: %v", mr.Keys())
	}

	ok, err = c.Get(ctx, "snapshot:Meal:m-1", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.EntityID != "m-1" || got.LastEventID != 7 || got.Data["title"] != "All inclusive" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

func TestCache_TTLAndDel(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 10); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(11 * time.Second)
	var s string
	if ok, _ := c.Get(ctx, "k", &s); ok {
		t.Fatalf("expected key to expire")
	}

	_ = c.Set(ctx, "k", "v", 10)
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if ok, _ := c.Get(ctx, "k", &s); ok {
		t.Fatalf("expected key to be deleted")
	}
}
