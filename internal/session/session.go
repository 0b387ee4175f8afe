// Package session guarda o marcador de sessão: id da sessão para id do
// usuário, com validade.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apadrinhaparana/demandas/internal/auth"
)

var ErrNotFound = errors.New("sessão não encontrada ou expirada")

// Store é implementado pelos backends de sessão.
type Store interface {
	Save(ctx context.Context, id, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, id string) (string, error)
	Revoke(ctx context.Context, id string) error
}

type memoryEntry struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore mantém sessões no processo. Serve para desenvolvimento e
// testes.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Save também descarta as sessões vencidas que nunca mais foram consultadas.
func (m *MemoryStore) Save(ctx context.Context, id, userID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[auth.SessionKey(id)] = memoryEntry{userID: userID, expiresAt: now.Add(ttl)}
	return nil
}

func (m *MemoryStore) Lookup(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := auth.SessionKey(id)
	e, ok := m.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return "", ErrNotFound
	}
	return e.userID, nil
}

func (m *MemoryStore) Revoke(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, auth.SessionKey(id))
	return nil
}
