package localstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	file, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend: %v", err)
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   file,
		"redis":  NewRedisBackend(client, "teste:"),
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	var value []any
	if err := json.Unmarshal([]byte(`[
		{"id":"p1","nome":"Acolhimento"},
		{"id":"d1","titulo":"Visita","progresso":40,"finalizada":false,"comentarios":[{"texto":"ok"}]},
		"texto",
		3.5,
		null,
		[1,2,3]
	]`), &value); err != nil {
		t.Fatal(err)
	}

	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend, zerolog.Nop())
			if err := store.Save(ctx, KeyProjetos, value); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got := store.Load(ctx, KeyProjetos)
			if diff := cmp.Diff(value, got); diff != "" {
				t.Fatalf("round trip divergente (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadMissingAndCorrupt(t *testing.T) {
	ctx := context.Background()
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			store := New(backend, zerolog.Nop())
			if got := store.Load(ctx, KeyAgents); got != nil {
				t.Fatalf("chave ausente deveria devolver nil, veio %v", got)
			}
			if err := backend.Set(ctx, KeyAgents, []byte("{corrompido")); err != nil {
				t.Fatal(err)
			}
			if got := store.Load(ctx, KeyAgents); got != nil {
				t.Fatalf("JSON corrompido deveria devolver nil, veio %v", got)
			}
			if err := backend.Set(ctx, KeyAgents, []byte(`{"id":"x"}`)); err != nil {
				t.Fatal(err)
			}
			if got := store.Load(ctx, KeyAgents); got != nil {
				t.Fatalf("objeto não-array deveria devolver nil, veio %v", got)
			}
		})
	}
}

func TestLoadDemandasMigratesLegacyKey(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	store := New(backend, zerolog.Nop())

	if err := backend.Set(ctx, KeyDemandasLegado, []byte(`[{"id":"d1","titulo":"antiga"}]`)); err != nil {
		t.Fatal(err)
	}

	got := store.LoadDemandas(ctx)
	if len(got) != 1 {
		t.Fatalf("esperava 1 demanda migrada, veio %d", len(got))
	}
	if _, err := backend.Get(ctx, KeyDemandasLegado); err != ErrNotFound {
		t.Fatalf("chave legada deveria ter sido removida, err=%v", err)
	}
	if v2 := store.Load(ctx, KeyDemandas); len(v2) != 1 {
		t.Fatalf("chave v2 deveria conter a demanda migrada")
	}
}

func TestFileBackendRejectsTraversal(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Set(context.Background(), "../fora", []byte("[]")); err == nil {
		t.Fatalf("chave com .. deveria ser recusada")
	}
}
