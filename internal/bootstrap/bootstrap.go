// Package bootstrap abre os backends escolhidos na configuração: armazenamento
// local, documento na nuvem e Redis compartilhado.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/apadrinhaparana/demandas/internal/cloud"
	"github.com/apadrinhaparana/demandas/internal/config"
	"github.com/apadrinhaparana/demandas/internal/db"
	"github.com/apadrinhaparana/demandas/internal/localstore"
)

const redisPrefix = "apadrinha:"

// CloudStore é um armazenamento de documentos que também responde a Ping.
type CloudStore interface {
	cloud.DocumentStore
	Ping(ctx context.Context) error
}

// Resources agrupa as conexões abertas. Close libera todas.
type Resources struct {
	Local *localstore.Store
	// Cloud é nil quando a sincronização não está configurada.
	Cloud CloudStore
	// Redis é nil sem REDIS_URL.
	Redis *redis.Client
	// LocalPinger é preenchido quando o armazenamento local é remoto (Redis).
	LocalPinger interface {
		Ping(ctx context.Context) error
	}

	pool *pgxpool.Pool
}

// Open conecta os backends. Falha de conexão com a nuvem não impede a
// abertura: o monitor de conectividade passa a reportar offline.
func Open(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Resources, error) {
	res := &Resources{}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis parse: %w", err)
		}
		res.Redis = redis.NewClient(opts)
	}

	local, backend, err := openLocal(cfg, res.Redis, logger)
	if err != nil {
		res.Close()
		return nil, err
	}
	res.Local = local
	if rb, ok := backend.(*localstore.RedisBackend); ok {
		res.LocalPinger = rb
	}

	if !cfg.CloudEnabled() {
		if cfg.CloudProvider != "" {
			logger.Warn().Str("provider", cfg.CloudProvider).Msg("configuração da nuvem incompleta; sincronização desativada")
		}
		return res, nil
	}

	switch cfg.CloudProvider {
	case config.CloudPostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("db: %w", err)
		}
		res.pool = pool
		schemaCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = cloud.EnsureSchema(schemaCtx, pool)
		cancel()
		if err != nil {
			logger.Warn().Err(err).Msg("não foi possível preparar a tabela de documentos")
		}
		res.Cloud = cloud.NewPostgresStore(pool)
	case config.CloudFirestore:
		store, err := cloud.NewFirestoreStore(cloud.FirestoreConfig{
			APIKey:    cfg.Firebase.APIKey,
			ProjectID: cfg.Firebase.ProjectID,
		})
		if err != nil {
			res.Close()
			return nil, fmt.Errorf("firestore: %w", err)
		}
		res.Cloud = store
	}

	logger.Info().Str("provider", cfg.CloudProvider).Msg("sincronização com a nuvem ativa")
	return res, nil
}

func openLocal(cfg *config.Config, client *redis.Client, logger zerolog.Logger) (*localstore.Store, localstore.Backend, error) {
	var backend localstore.Backend
	switch cfg.LocalStore {
	case config.LocalStoreFile:
		fb, err := localstore.NewFileBackend(cfg.LocalStoreDir)
		if err != nil {
			return nil, nil, fmt.Errorf("local store: %w", err)
		}
		backend = fb
	case config.LocalStoreRedis:
		if client == nil {
			return nil, nil, errors.New("local store: REDIS_URL ausente")
		}
		backend = localstore.NewRedisBackend(client, redisPrefix)
	case config.LocalStoreMemory:
		backend = localstore.NewMemoryBackend()
	default:
		return nil, nil, fmt.Errorf("local store: backend %q não suportado", cfg.LocalStore)
	}
	return localstore.New(backend, logger.With().Str("component", "localstore").Logger()), backend, nil
}

// CloudLocation monta a localização do documento agregado.
func CloudLocation(cfg *config.Config) cloud.Location {
	return cloud.Location{Collection: cfg.CloudCollection, Document: cfg.CloudDocument}
}

// Close fecha as conexões abertas.
func (r *Resources) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
	if r.Redis != nil {
		_ = r.Redis.Close()
	}
}
