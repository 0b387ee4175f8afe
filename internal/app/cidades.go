package app

import (
	"context"
	"strings"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/localstore"
	"github.com/apadrinhaparana/demandas/internal/util"
)

func (c *Controller) Projetos() []demanda.Projeto {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]demanda.Projeto{}, c.projetos...)
}

// AdicionarProjeto devolve o id do projeto com o mesmo nome ou cria um novo.
// Nome vazio ou da lista de removidos devolve ok=false.
func (c *Controller) AdicionarProjeto(ctx context.Context, nome string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requirePronto() != nil {
		return "", false
	}
	nome = strings.TrimSpace(nome)
	if nome == "" || demanda.ProjetoRemovido(nome) {
		return "", false
	}
	for _, p := range c.projetos {
		if util.SameText(p.Nome, nome) {
			return p.ID, true
		}
	}
	p := demanda.Projeto{ID: util.NewID(), Nome: nome}
	c.projetos = append(append([]demanda.Projeto{}, c.projetos...), p)
	c.changedLocked(ctx, localstore.KeyProjetos)
	return p.ID, true
}

func (c *Controller) Cidades() []demanda.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]demanda.Agent{}, c.agents...)
}

// CidadesFiltradas devolve as cidades cujo nome contém a busca.
func (c *Controller) CidadesFiltradas(busca string) []demanda.Agent {
	c.mu.Lock()
	defer c.mu.Unlock()
	busca = util.TextKey(busca)
	out := make([]demanda.Agent, 0, len(c.agents))
	for _, a := range c.agents {
		if busca == "" || strings.Contains(strings.ToLower(a.Nome), busca) {
			out = append(out, a)
		}
	}
	return out
}

func (c *Controller) indexCidadeLocked(id string) int {
	for i, a := range c.agents {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) cidadePorNomeLocked(nome string) int {
	for i, a := range c.agents {
		if util.SameText(a.Nome, nome) {
			return i
		}
	}
	return -1
}

func (c *Controller) novaCidadeLocked(nome string) demanda.Agent {
	a := demanda.Agent{
		ID:       util.NewID(),
		Nome:     nome,
		Ativo:    true,
		CriadoEm: demanda.Timestamp(c.now()),
	}
	c.agents = append(append([]demanda.Agent{}, c.agents...), a)
	return a
}

func (c *Controller) setCidadeLocked(i int, a demanda.Agent) {
	out := append([]demanda.Agent{}, c.agents...)
	out[i] = a
	c.agents = out
}

// AdicionarCidade devolve o id da cidade com o mesmo nome, reativando-a se
// estiver inativa, ou cria uma nova.
func (c *Controller) AdicionarCidade(ctx context.Context, nome string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.requirePronto() != nil {
		return "", false
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return "", false
	}
	if i := c.cidadePorNomeLocked(nome); i >= 0 {
		a := c.agents[i]
		if !a.Ativo {
			a.Ativo = true
			c.setCidadeLocked(i, a)
			c.changedLocked(ctx, localstore.KeyAgents)
		}
		return a.ID, true
	}
	a := c.novaCidadeLocked(nome)
	c.changedLocked(ctx, localstore.KeyAgents)
	return a.ID, true
}

// CriarCidade cadastra uma cidade pela tela de cidades; nomes repetidos são
// recusados.
func (c *Controller) CriarCidade(ctx context.Context, nome string) (demanda.Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Agent{}, err
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return demanda.Agent{}, util.ErrNomeObrigatorio
	}
	if c.cidadePorNomeLocked(nome) >= 0 {
		return demanda.Agent{}, ErrCidadeDuplicada
	}
	a := c.novaCidadeLocked(nome)
	c.changedLocked(ctx, localstore.KeyAgents)
	return a, nil
}

func (c *Controller) EditarCidade(ctx context.Context, id, nome string) (demanda.Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Agent{}, err
	}
	i := c.indexCidadeLocked(id)
	if i < 0 {
		return demanda.Agent{}, ErrCidadeNaoEncontrada
	}
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return demanda.Agent{}, util.ErrNomeObrigatorio
	}
	if j := c.cidadePorNomeLocked(nome); j >= 0 && j != i {
		return demanda.Agent{}, ErrCidadeDuplicada
	}
	a := c.agents[i]
	a.Nome = nome
	c.setCidadeLocked(i, a)
	c.changedLocked(ctx, localstore.KeyAgents)
	return a, nil
}

func (c *Controller) AlternarCidadeAtiva(ctx context.Context, id string) (demanda.Agent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Agent{}, err
	}
	i := c.indexCidadeLocked(id)
	if i < 0 {
		return demanda.Agent{}, ErrCidadeNaoEncontrada
	}
	a := c.agents[i]
	a.Ativo = !a.Ativo
	c.setCidadeLocked(i, a)
	c.changedLocked(ctx, localstore.KeyAgents)
	return a, nil
}

// ExcluirCidade remove a cidade e limpa o vínculo das demandas que a
// referenciavam.
func (c *Controller) ExcluirCidade(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return err
	}
	i := c.indexCidadeLocked(id)
	if i < 0 {
		return ErrCidadeNaoEncontrada
	}
	agents := make([]demanda.Agent, 0, len(c.agents)-1)
	agents = append(agents, c.agents[:i]...)
	c.agents = append(agents, c.agents[i+1:]...)

	keys := []string{localstore.KeyAgents}
	demandas := make([]demanda.Demanda, len(c.demandas))
	afetadas := 0
	for k, d := range c.demandas {
		if d.AgentID == id {
			d.AgentID = ""
			afetadas++
		}
		demandas[k] = d
	}
	if afetadas > 0 {
		c.demandas = demandas
		keys = append(keys, localstore.KeyDemandas)
	}
	c.changedLocked(ctx, keys...)
	c.logger.Info().Str("cidade_id", id).Int("demandas_desvinculadas", afetadas).Msg("cidade excluída")
	return nil
}
