package middleware

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/todo-api/internal/config"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func entryKeys(mr *miniredis.Miniredis, prefix string) []string {
	var out []string
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, prefix+":") {
			out = append(out, k)
		}
	}
	return out
}

var testCacheConfig = config.CacheConfig{
	Enabled:     true,
	Methods:     map[string]bool{http.MethodGet: true},
	TTL:         time.Minute,
	KeyStrategy: "route_query",
	Prefix:      "cache:test",
}

func TestRedisCache_SkipsStoreWhenWriteLandsDuringRead(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	mw := NewRedisCache(testCacheConfig, rdb)

	racing := func(c echo.Context) error {
		// a write completes while this read is still building its response
		if _, err := invalidatePrefix(context.Background(), rdb, testCacheConfig.Prefix); err != nil {
			return err
		}
		return c.JSON(http.StatusOK, []string{"stale"})
	}
	c, rec := newContext(http.MethodGet, "/api/todotasks")
	if err := mw(racing)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "MISS" {
		t.Fatalf("got %d X-Cache=%q", rec.Code, rec.Header().Get("X-Cache"))
	}
	if keys := entryKeys(mr, testCacheConfig.Prefix); len(keys) != 0 {
		t.Fatalf("stale response cached under %v", keys)
	}

	c, _ = newContext(http.MethodGet, "/api/todotasks")
	if err := mw(ok)(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if keys := entryKeys(mr, testCacheConfig.Prefix); len(keys) != 1 {
		t.Fatalf("expected one cached entry, got %v", keys)
	}
	if ttl := mr.TTL(entryKeys(mr, testCacheConfig.Prefix)[0]); ttl <= 0 || ttl > time.Minute {
		t.Errorf("entry ttl = %v", ttl)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	ctx := context.Background()
	for _, k := range []string{"cache:test:a", "cache:test:b", "cache:other:a"} {
		if err := mr.Set(k, "x"); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	before, _ := readGeneration(ctx, rdb, "cache:test")

	n, err := invalidatePrefix(ctx, rdb, "cache:test")
	if err != nil {
		t.Fatalf("invalidatePrefix: %v", err)
	}
	if n != 2 {
		t.Errorf("removed %d, want 2", n)
	}
	if !mr.Exists("cache:other:a") {
		t.Errorf("unrelated prefix was removed")
	}
	after, _ := readGeneration(ctx, rdb, "cache:test")
	if before != "0" || after != "1" {
		t.Errorf("generation %q -> %q, want 0 -> 1", before, after)
	}

	stored, err := storeIfCurrent(ctx, rdb, "cache:test", "cache:test:c", before, []byte("payload"), time.Minute)
	if err != nil || stored {
		t.Fatalf("store with old generation: stored=%v err=%v", stored, err)
	}
	stored, err = storeIfCurrent(ctx, rdb, "cache:test", "cache:test:c", after, []byte("payload"), time.Minute)
	if err != nil || !stored {
		t.Fatalf("store with current generation: stored=%v err=%v", stored, err)
	}
}
