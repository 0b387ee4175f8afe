// Package demanda define o modelo de dados persistido localmente e na nuvem.
package demanda

import (
	"strings"
	"time"
)

// Prioridade limita a criticidade de uma demanda.
type Prioridade string

const (
	PrioridadeAlta  Prioridade = "ALTA"
	PrioridadeMedia Prioridade = "MÉDIA"
	PrioridadeBaixa Prioridade = "BAIXA"

	// PrioridadePadrao é aplicada quando o valor recebido não é reconhecido.
	PrioridadePadrao = PrioridadeMedia
)

// ParsePrioridade reconhece a prioridade ignorando caixa e acento de MÉDIA.
func ParsePrioridade(valor string) (Prioridade, bool) {
	switch strings.ToUpper(strings.TrimSpace(valor)) {
	case "ALTA":
		return PrioridadeAlta, true
	case "MÉDIA", "MEDIA":
		return PrioridadeMedia, true
	case "BAIXA":
		return PrioridadeBaixa, true
	}
	return "", false
}

// NormalizePrioridade devolve a prioridade reconhecida ou a padrão.
func NormalizePrioridade(valor string) Prioridade {
	if p, ok := ParsePrioridade(valor); ok {
		return p
	}
	return PrioridadePadrao
}

// Projeto agrupa demandas.
type Projeto struct {
	ID   string `json:"id"`
	Nome string `json:"nome"`
}

// Responsavel é a projeção pública de um usuário usada para atribuição.
type Responsavel struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Iniciais string `json:"iniciais"`
}

// Usuario representa uma pessoa com acesso ao sistema.
type Usuario struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Senha    string `json:"senha"`
	Cargo    string `json:"cargo"`
	Iniciais string `json:"iniciais"`
	CriadoEm string `json:"criadoEm"`
}

// Responsavel projeta o usuário para atribuição.
func (u Usuario) Responsavel() Responsavel {
	return Responsavel{ID: u.ID, Nome: u.Nome, Iniciais: u.Iniciais}
}

// Agent representa uma cidade vinculável às demandas.
type Agent struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Ativo    bool   `json:"ativo"`
	CriadoEm string `json:"criadoEm"`
}

// Comentario é anexado a uma demanda em ordem de inserção.
type Comentario struct {
	ID       string      `json:"id"`
	Texto    string      `json:"texto"`
	CriadoEm string      `json:"criadoEm"`
	Autor    Responsavel `json:"autor"`
}

// Demanda é o registro acompanhado pelo sistema. Projeto é uma cópia
// desnormalizada do projeto canônico.
type Demanda struct {
	ID                         string        `json:"id"`
	Titulo                     string        `json:"titulo"`
	Projeto                    Projeto       `json:"projeto"`
	Responsaveis               []Responsavel `json:"responsaveis"`
	Prioridade                 Prioridade    `json:"prioridade"`
	Descricao                  string        `json:"descricao"`
	Progresso                  int           `json:"progresso"`
	CriadaEm                   string        `json:"criadaEm"`
	Finalizada                 bool          `json:"finalizada"`
	AgentID                    string        `json:"agentId,omitempty"`
	Comentarios                []Comentario  `json:"comentarios"`
	NumeroCriancasAcolhidas    *int          `json:"numeroCriancasAcolhidas,omitempty"`
	NumeroFamiliasAcompanhadas *int          `json:"numeroFamiliasAcompanhadas,omitempty"`
	Observacoes                string        `json:"observacoes,omitempty"`
}

// Snapshot agrega todas as coleções trocadas com o armazenamento remoto.
type Snapshot struct {
	Projetos []Projeto `json:"projetos"`
	Demandas []Demanda `json:"demandas"`
	Agents   []Agent   `json:"agents"`
	Usuarios []Usuario `json:"usuarios"`
}

// RawSnapshot carrega as coleções como vieram do armazenamento, antes da
// normalização.
type RawSnapshot struct {
	Projetos []any
	Demandas []any
	Agents   []any
	Usuarios []any
}

// Timestamp formata instantes no padrão persistido.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseTimestamp aceita RFC 3339 com ou sem fração de segundos.
func ParseTimestamp(valor string) (time.Time, bool) {
	valor = strings.TrimSpace(valor)
	if valor == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, valor)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
