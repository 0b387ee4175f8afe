package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/apadrinhaparana/demandas/internal/auth"
)

type sessionData struct {
	UserID   string    `json:"usuario_id"`
	CriadaEm time.Time `json:"criada_em"`
}

// RedisStore guarda sessões no Redis com TTL.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, id, userID string, ttl time.Duration) error {
	raw, err := json.Marshal(sessionData{UserID: userID, CriadaEm: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("codificar sessão: %w", err)
	}
	if err := s.client.Set(ctx, auth.SessionKey(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("salvar sessão: %w", err)
	}
	return nil
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (string, error) {
	raw, err := s.client.Get(ctx, auth.SessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("buscar sessão: %w", err)
	}
	var data sessionData
	if err := json.Unmarshal(raw, &data); err != nil || data.UserID == "" {
		return "", ErrNotFound
	}
	return data.UserID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, auth.SessionKey(id)).Err(); err != nil {
		return fmt.Errorf("revogar sessão: %w", err)
	}
	return nil
}

// Ping verifica se o Redis responde.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
