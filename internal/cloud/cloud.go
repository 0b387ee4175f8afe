// Package cloud espelha o snapshot agregado em um armazenamento remoto de
// documentos. Falhas de escrita nunca propagam: viram SaveResult.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/apadrinhaparana/demandas/internal/connectivity"
	"github.com/apadrinhaparana/demandas/internal/demanda"
)

var (
	ErrNotConfigured    = errors.New("nuvem: sincronização não configurada")
	ErrOffline          = errors.New("nuvem: sem conexão")
	ErrPermissionDenied = errors.New("nuvem: sem permissão")
)

const (
	DefaultCollection = "apadrinhaParana"
	DefaultDocument   = "dados"

	fieldProjetos     = "projetos"
	fieldDemandas     = "demandas"
	fieldAgents       = "agents"
	fieldUsuarios     = "usuarios"
	FieldAtualizadoEm = "atualizadoEm"
)

// DocumentStore é o contrato mínimo do armazenamento remoto.
type DocumentStore interface {
	// Get devolve os campos do documento; ok=false quando não existe.
	Get(ctx context.Context, collection, document string) (fields map[string]any, ok bool, err error)
	// Merge faz upsert dos campos informados e carimba atualizadoEm no servidor.
	Merge(ctx context.Context, collection, document string, fields map[string]any) error
}

// Location identifica o documento agregado.
type Location struct {
	Collection string
	Document   string
}

// SaveResult descreve o desfecho de uma escrita.
type SaveResult struct {
	Sucesso      bool  `json:"sucesso"`
	Offline      bool  `json:"offline,omitempty"`
	SemPermissao bool  `json:"semPermissao,omitempty"`
	Err          error `json:"-"`
}

// Adapter carrega e salva o snapshot agregado.
type Adapter struct {
	store   DocumentStore
	loc     Location
	checker connectivity.Checker
	logger  zerolog.Logger
}

// New cria o adaptador. store nil desativa a sincronização.
func New(store DocumentStore, loc Location, checker connectivity.Checker, logger zerolog.Logger) *Adapter {
	if loc.Collection == "" {
		loc.Collection = DefaultCollection
	}
	if loc.Document == "" {
		loc.Document = DefaultDocument
	}
	return &Adapter{store: store, loc: loc, checker: checker, logger: logger}
}

// Enabled indica se há armazenamento remoto configurado.
func (a *Adapter) Enabled() bool {
	return a != nil && a.store != nil
}

// LoadSnapshot busca o documento agregado. Documento inexistente devolve
// coleções vazias.
func (a *Adapter) LoadSnapshot(ctx context.Context) (demanda.RawSnapshot, error) {
	empty := demanda.RawSnapshot{Projetos: []any{}, Demandas: []any{}, Agents: []any{}, Usuarios: []any{}}
	if !a.Enabled() {
		return empty, fmt.Errorf("carregar snapshot: %w", ErrNotConfigured)
	}
	fields, ok, err := a.store.Get(ctx, a.loc.Collection, a.loc.Document)
	if err != nil {
		return empty, fmt.Errorf("carregar snapshot: %w", err)
	}
	if !ok {
		return empty, nil
	}
	return RawFromFields(fields), nil
}

// RawFromFields separa as coleções de um documento agregado. Campos ausentes
// ou de outro tipo viram listas vazias.
func RawFromFields(fields map[string]any) demanda.RawSnapshot {
	return demanda.RawSnapshot{
		Projetos: asArray(fields[fieldProjetos]),
		Demandas: asArray(fields[fieldDemandas]),
		Agents:   asArray(fields[fieldAgents]),
		Usuarios: asArray(fields[fieldUsuarios]),
	}
}

// SaveSnapshot grava as quatro coleções de uma vez.
func (a *Adapter) SaveSnapshot(ctx context.Context, snap demanda.Snapshot) SaveResult {
	return a.save(ctx, map[string]any{
		fieldProjetos: snap.Projetos,
		fieldDemandas: snap.Demandas,
		fieldAgents:   snap.Agents,
		fieldUsuarios: snap.Usuarios,
	})
}

// SaveUsuarios grava apenas a lista de usuários (cadastro).
func (a *Adapter) SaveUsuarios(ctx context.Context, usuarios []demanda.Usuario) SaveResult {
	return a.save(ctx, map[string]any{fieldUsuarios: usuarios})
}

func (a *Adapter) save(ctx context.Context, payload map[string]any) SaveResult {
	if !a.Enabled() {
		return SaveResult{Sucesso: true}
	}
	if a.checker != nil && !a.checker.Online() {
		return SaveResult{Offline: true, Err: ErrOffline}
	}

	fields, err := toFields(payload)
	if err != nil {
		a.logger.Error().Err(err).Msg("nuvem: falha ao preparar snapshot")
		return SaveResult{Err: err}
	}

	if err := a.store.Merge(ctx, a.loc.Collection, a.loc.Document, fields); err != nil {
		return classify(err)
	}
	return SaveResult{Sucesso: true}
}

func classify(err error) SaveResult {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return SaveResult{SemPermissao: true, Err: err}
	case errors.Is(err, ErrOffline), errors.Is(err, context.DeadlineExceeded):
		return SaveResult{Offline: true, Err: err}
	}
	return SaveResult{Err: err}
}

// toFields converte structs em mapas genéricos e remove valores nulos, que o
// armazenamento remoto rejeita.
func toFields(payload map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	cleaned, _ := StripNil(out).(map[string]any)
	return cleaned, nil
}

// StripNil remove recursivamente chaves com valor nil e elementos nil de
// listas.
func StripNil(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = StripNil(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, StripNil(item))
		}
		return out
	}
	return v
}

func asArray(v any) []any {
	if list, ok := v.([]any); ok {
		return list
	}
	return []any{}
}
