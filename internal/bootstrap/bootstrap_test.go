package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/apadrinhaparana/demandas/internal/config"
	"github.com/apadrinhaparana/demandas/internal/localstore"
)

func TestOpenMemoryWithoutCloud(t *testing.T) {
	cfg := &config.Config{LocalStore: config.LocalStoreMemory, CloudProvider: config.CloudFirestore}

	res, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()

	require.NotNil(t, res.Local)
	require.Nil(t, res.Cloud, "firestore incompleto desativa a nuvem")
	require.Nil(t, res.Redis)
	require.Nil(t, res.LocalPinger)
}

func TestOpenRedisLocalStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{LocalStore: config.LocalStoreRedis, RedisURL: "redis://" + mr.Addr()}

	res, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()

	ctx := context.Background()
	require.NoError(t, res.Local.Save(ctx, localstore.KeyAgents, []map[string]any{{"id": "c1", "nome": "Curitiba"}}))
	require.True(t, mr.Exists(redisPrefix+localstore.KeyAgents))
	require.Len(t, res.Local.Load(ctx, localstore.KeyAgents), 1)

	require.NotNil(t, res.LocalPinger)
	require.NoError(t, res.LocalPinger.Ping(ctx))
}

func TestOpenFileLocalStore(t *testing.T) {
	cfg := &config.Config{LocalStore: config.LocalStoreFile, LocalStoreDir: t.TempDir()}

	res, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()
	require.NotNil(t, res.Local)
}

func TestOpenFirestoreWhenComplete(t *testing.T) {
	cfg := &config.Config{
		LocalStore:      config.LocalStoreMemory,
		CloudProvider:   config.CloudFirestore,
		CloudCollection: "colecao",
		Firebase:        config.FirebaseConfig{APIKey: "k", AuthDomain: "d", ProjectID: "p", AppID: "a"},
	}

	res, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer res.Close()
	require.NotNil(t, res.Cloud)

	loc := CloudLocation(cfg)
	require.Equal(t, "colecao", loc.Collection)
	require.Empty(t, loc.Document)
}

func TestOpenRejectsUnknownLocalStore(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{LocalStore: "s3"}, zerolog.Nop())
	require.Error(t, err)
}
