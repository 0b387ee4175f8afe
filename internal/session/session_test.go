package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/apadrinhaparana/demandas/internal/auth"
)

func setupRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), s
}

func exercise(t *testing.T, store Store, expire func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	if err := store.Save(ctx, "sess-1", "u1", time.Hour); err != nil {
		t.Fatalf("Save falhou: %v", err)
	}
	userID, err := store.Lookup(ctx, "sess-1")
	if err != nil || userID != "u1" {
		t.Fatalf("Lookup = %q, %v", userID, err)
	}

	if _, err := store.Lookup(ctx, "outra"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperava ErrNotFound, obteve %v", err)
	}

	if err := store.Revoke(ctx, "sess-1"); err != nil {
		t.Fatalf("Revoke falhou: %v", err)
	}
	if _, err := store.Lookup(ctx, "sess-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sessão revogada deveria sumir, obteve %v", err)
	}

	if err := store.Save(ctx, "sess-2", "u2", time.Minute); err != nil {
		t.Fatalf("Save falhou: %v", err)
	}
	expire(2 * time.Minute)
	if _, err := store.Lookup(ctx, "sess-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("sessão expirada deveria sumir, obteve %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	store, s := setupRedis(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping falhou: %v", err)
	}
	exercise(t, store, s.FastForward)
}

func TestRedisStoreKeepsOnlyHash(t *testing.T) {
	store, s := setupRedis(t)
	if err := store.Save(context.Background(), "sess-raw", "u1", time.Hour); err != nil {
		t.Fatalf("Save falhou: %v", err)
	}
	if !s.Exists(auth.SessionKey("sess-raw")) {
		t.Fatal("chave com hash deveria existir")
	}
	if s.Exists("sessao:sess-raw") {
		t.Fatal("id bruto não deveria ser usado como chave")
	}
	if ttl := s.TTL(auth.SessionKey("sess-raw")); ttl != time.Hour {
		t.Fatalf("TTL inesperado: %v", ttl)
	}
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	exercise(t, store, func(d time.Duration) { now = now.Add(d) })
}

func TestMemoryStoreSweepsExpiredOnSave(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	if err := store.Save(ctx, "antiga", "u1", time.Minute); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Minute)
	if err := store.Save(ctx, "nova", "u2", time.Minute); err != nil {
		t.Fatal(err)
	}

	if len(store.entries) != 1 {
		t.Fatalf("esperava 1 sessão guardada, há %d", len(store.entries))
	}
	if _, ok := store.entries[auth.SessionKey("nova")]; !ok {
		t.Fatal("sessão nova deveria permanecer")
	}
}
