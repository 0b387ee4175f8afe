// Package localstore persiste coleções como JSON em um armazenamento
// chave-valor local. Não valida conteúdo: isso é papel de normalize.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Chaves usadas pelo aplicativo.
const (
	KeyProjetos       = "apadrinha-projetos"
	KeyDemandas       = "apadrinha-demandas-v2"
	KeyDemandasLegado = "apadrinha-demandas"
	KeyAgents         = "apadrinha-agents"
	KeyUsuarios       = "apadrinha-usuarios"
)

// ErrNotFound indica chave ausente no backend.
var ErrNotFound = errors.New("localstore: chave não encontrada")

// Backend abstrai o armazenamento físico dos valores.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store lê e grava coleções JSON sobre um Backend.
type Store struct {
	backend Backend
	logger  zerolog.Logger
}

// New cria o adaptador.
func New(backend Backend, logger zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Load devolve o array salvo na chave ou nil quando ausente, ilegível ou não
// for um array.
func (s *Store) Load(ctx context.Context, key string) []any {
	raw, err := s.backend.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("localstore: leitura falhou")
		}
		return nil
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("localstore: conteúdo corrompido ignorado")
		return nil
	}
	if list == nil {
		return nil
	}
	return list
}

// Save codifica o valor em JSON e grava na chave.
func (s *Store) Save(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("localstore: codificar %s: %w", key, err)
	}
	if err := s.backend.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("localstore: gravar %s: %w", key, err)
	}
	return nil
}

// LoadDemandas lê a chave v2 e, na ausência dela, migra a chave legada.
func (s *Store) LoadDemandas(ctx context.Context) []any {
	if list := s.Load(ctx, KeyDemandas); list != nil {
		return list
	}
	legado := s.Load(ctx, KeyDemandasLegado)
	if legado == nil {
		return nil
	}
	if err := s.Save(ctx, KeyDemandas, legado); err != nil {
		s.logger.Warn().Err(err).Msg("localstore: migração de demandas falhou")
		return legado
	}
	if err := s.backend.Delete(ctx, KeyDemandasLegado); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Msg("localstore: remoção da chave legada falhou")
	}
	s.logger.Info().Int("demandas", len(legado)).Msg("localstore: demandas migradas para v2")
	return legado
}
