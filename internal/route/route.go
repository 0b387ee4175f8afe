// Package route deriva a aba ativa do endereço e mantém o histórico de
// navegação entre as duas telas.
package route

import (
	"strings"
	"sync"
)

type Aba string

const (
	AbaDemandas Aba = "demandas"
	AbaAgentes  Aba = "agentes"
)

const (
	PathDemandas = "#/"
	PathAgentes  = "#/agents"
)

// Parse reconhece o nome da aba.
func Parse(valor string) (Aba, bool) {
	switch strings.ToLower(strings.TrimSpace(valor)) {
	case string(AbaDemandas):
		return AbaDemandas, true
	case string(AbaAgentes), "agents":
		return AbaAgentes, true
	}
	return "", false
}

func rotaAgentes(rota string) bool {
	return rota == "/agents" || rota == "/agentes"
}

// FromLocation escolhe a aba pelo fragmento e, na falta dele, pelo caminho.
func FromLocation(hash, path string) Aba {
	h := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(hash, "#")))
	if h != "" && !strings.HasPrefix(h, "/") {
		h = "/" + h
	}
	h = strings.TrimRight(h, "/")
	if rotaAgentes(h) {
		return AbaAgentes
	}
	p := strings.TrimRight(strings.ToLower(path), "/")
	if rotaAgentes(p) || strings.HasSuffix(p, "/agents") || strings.HasSuffix(p, "/agentes") {
		return AbaAgentes
	}
	return AbaDemandas
}

// Path devolve o fragmento canônico da aba.
func Path(aba Aba) string {
	if aba == AbaAgentes {
		return PathAgentes
	}
	return PathDemandas
}

// Navigator guarda a pilha de abas visitadas, como o histórico do navegador.
type Navigator struct {
	mu      sync.Mutex
	entries []Aba
	pos     int
}

func NewNavigator(inicial Aba) *Navigator {
	if inicial == "" {
		inicial = AbaDemandas
	}
	return &Navigator{entries: []Aba{inicial}}
}

func (n *Navigator) Atual() Aba {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.entries[n.pos]
}

// Navigate empilha a aba e descarta o histórico à frente. Navegar para a aba
// atual não cria entrada.
func (n *Navigator) Navigate(aba Aba) Aba {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.entries[n.pos] == aba {
		return aba
	}
	n.entries = append(n.entries[:n.pos+1:n.pos+1], aba)
	n.pos++
	return aba
}

// Replace troca a entrada atual sem criar histórico.
func (n *Navigator) Replace(aba Aba) Aba {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries[n.pos] = aba
	return aba
}

func (n *Navigator) Back() Aba {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pos > 0 {
		n.pos--
	}
	return n.entries[n.pos]
}

func (n *Navigator) Forward() Aba {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.pos < len(n.entries)-1 {
		n.pos++
	}
	return n.entries[n.pos]
}

// Sync aplica uma mudança de endereço feita fora do navegador (popstate).
func (n *Navigator) Sync(hash, path string) Aba {
	return n.Replace(FromLocation(hash, path))
}
