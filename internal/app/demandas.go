package app

import (
	"context"
	"strings"
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/localstore"
	"github.com/apadrinhaparana/demandas/internal/util"
)

type NovaDemanda struct {
	Titulo                     string   `json:"titulo"`
	ProjetoID                  string   `json:"projetoId"`
	ResponsaveisIDs            []string `json:"responsaveisIds"`
	Prioridade                 string   `json:"prioridade"`
	Descricao                  string   `json:"descricao"`
	AgentID                    string   `json:"agentId"`
	NumeroCriancasAcolhidas    *int     `json:"numeroCriancasAcolhidas"`
	NumeroFamiliasAcompanhadas *int     `json:"numeroFamiliasAcompanhadas"`
	Observacoes                string   `json:"observacoes"`
}

// EdicaoDemanda altera apenas os campos informados.
type EdicaoDemanda struct {
	Titulo                     *string   `json:"titulo"`
	ProjetoID                  *string   `json:"projetoId"`
	ResponsaveisIDs            *[]string `json:"responsaveisIds"`
	Prioridade                 *string   `json:"prioridade"`
	Descricao                  *string   `json:"descricao"`
	Progresso                  *int      `json:"progresso"`
	AgentID                    *string   `json:"agentId"`
	NumeroCriancasAcolhidas    *int      `json:"numeroCriancasAcolhidas"`
	NumeroFamiliasAcompanhadas *int      `json:"numeroFamiliasAcompanhadas"`
	Observacoes                *string   `json:"observacoes"`
}

// Situacao separa as abas da listagem.
type Situacao string

const (
	SituacaoTodas       Situacao = ""
	SituacaoAndamento   Situacao = "andamento"
	SituacaoFinalizadas Situacao = "finalizadas"
)

const (
	FiltroTodos = "todos"
	FiltroEu    = "eu"
)

// Filtro seleciona demandas na listagem. Campos vazios não filtram.
type Filtro struct {
	Busca          string
	ProjetoID      string
	Responsavel    string
	Situacao       Situacao
	UsuarioAtualID string
}

// Resumo conta as demandas abertas por prioridade.
type Resumo struct {
	Total int `json:"total"`
	Alta  int `json:"alta"`
	Media int `json:"media"`
	Baixa int `json:"baixa"`
}

func (c *Controller) indexDemandaLocked(id string) int {
	for i, d := range c.demandas {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) projetoLocked(id string) (demanda.Projeto, bool) {
	for _, p := range c.projetos {
		if p.ID == id {
			return p, true
		}
	}
	return demanda.Projeto{}, false
}

func (c *Controller) cidadeExisteLocked(id string) bool {
	for _, a := range c.agents {
		if a.ID == id {
			return true
		}
	}
	return false
}

// responsaveisLocked resolve ids pela coleção de usuários, sem repetição e
// na ordem recebida.
func (c *Controller) responsaveisLocked(ids []string) []demanda.Responsavel {
	out := make([]demanda.Responsavel, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		for _, u := range c.usuarios {
			if u.ID == id {
				seen[id] = struct{}{}
				out = append(out, u.Responsavel())
				break
			}
		}
	}
	return out
}

func validNonNegative(n *int) (*int, error) {
	if n == nil {
		return nil, nil
	}
	if *n < 0 {
		return nil, ErrNumeroInvalido
	}
	v := *n
	return &v, nil
}

func clamp(progresso int) int {
	switch {
	case progresso < 0:
		return 0
	case progresso > 100:
		return 100
	}
	return progresso
}

// CriarDemanda cria a demanda no início da lista. Sem responsáveis
// resolvidos, o autor assume a demanda.
func (c *Controller) CriarDemanda(ctx context.Context, in NovaDemanda, autor demanda.Responsavel) (demanda.Demanda, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Demanda{}, err
	}
	if strings.TrimSpace(autor.ID) == "" {
		return demanda.Demanda{}, ErrAutorObrigatorio
	}
	projeto, ok := c.projetoLocked(in.ProjetoID)
	if !ok {
		return demanda.Demanda{}, ErrProjetoNaoEncontrado
	}
	titulo := strings.TrimSpace(in.Titulo)
	if titulo == "" {
		return demanda.Demanda{}, ErrTituloObrigatorio
	}
	criancas, err := validNonNegative(in.NumeroCriancasAcolhidas)
	if err != nil {
		return demanda.Demanda{}, err
	}
	familias, err := validNonNegative(in.NumeroFamiliasAcompanhadas)
	if err != nil {
		return demanda.Demanda{}, err
	}

	responsaveis := c.responsaveisLocked(in.ResponsaveisIDs)
	if len(responsaveis) == 0 {
		responsaveis = []demanda.Responsavel{autor}
	}
	nova := demanda.Demanda{
		ID:                         util.NewID(),
		Titulo:                     titulo,
		Projeto:                    projeto,
		Responsaveis:               responsaveis,
		Prioridade:                 demanda.NormalizePrioridade(in.Prioridade),
		Descricao:                  in.Descricao,
		Progresso:                  0,
		CriadaEm:                   demanda.Timestamp(c.now()),
		Finalizada:                 false,
		Comentarios:                []demanda.Comentario{},
		NumeroCriancasAcolhidas:    criancas,
		NumeroFamiliasAcompanhadas: familias,
		Observacoes:                strings.TrimSpace(in.Observacoes),
	}
	if c.cidadeExisteLocked(in.AgentID) {
		nova.AgentID = in.AgentID
	}

	c.demandas = append([]demanda.Demanda{nova}, c.demandas...)
	c.changedLocked(ctx, localstore.KeyDemandas)
	c.mostrarAvisoLocked(MensagemDemandaCriada)
	c.logger.Info().Str("demanda_id", nova.ID).Str("projeto", projeto.Nome).Msg("demanda criada")
	return nova, nil
}

func (c *Controller) EditarDemanda(ctx context.Context, id string, patch EdicaoDemanda) (demanda.Demanda, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Demanda{}, err
	}
	i := c.indexDemandaLocked(id)
	if i < 0 {
		return demanda.Demanda{}, ErrDemandaNaoEncontrada
	}
	d := c.demandas[i]

	if patch.Titulo != nil {
		titulo := strings.TrimSpace(*patch.Titulo)
		if titulo == "" {
			return demanda.Demanda{}, ErrTituloObrigatorio
		}
		d.Titulo = titulo
	}
	if patch.ProjetoID != nil {
		projeto, ok := c.projetoLocked(*patch.ProjetoID)
		if !ok {
			return demanda.Demanda{}, ErrProjetoNaoEncontrado
		}
		d.Projeto = projeto
	}
	if patch.ResponsaveisIDs != nil {
		if resolved := c.responsaveisLocked(*patch.ResponsaveisIDs); len(resolved) > 0 {
			d.Responsaveis = resolved
		}
	}
	if patch.Prioridade != nil {
		p, ok := demanda.ParsePrioridade(*patch.Prioridade)
		if !ok {
			return demanda.Demanda{}, ErrPrioridadeInvalida
		}
		d.Prioridade = p
	}
	if patch.Descricao != nil {
		d.Descricao = *patch.Descricao
	}
	if patch.Progresso != nil {
		d.Progresso = clamp(*patch.Progresso)
	}
	if patch.AgentID != nil {
		switch {
		case *patch.AgentID == "":
			d.AgentID = ""
		case c.cidadeExisteLocked(*patch.AgentID):
			d.AgentID = *patch.AgentID
		default:
			return demanda.Demanda{}, ErrCidadeNaoEncontrada
		}
	}
	if patch.NumeroCriancasAcolhidas != nil {
		n, err := validNonNegative(patch.NumeroCriancasAcolhidas)
		if err != nil {
			return demanda.Demanda{}, err
		}
		d.NumeroCriancasAcolhidas = n
	}
	if patch.NumeroFamiliasAcompanhadas != nil {
		n, err := validNonNegative(patch.NumeroFamiliasAcompanhadas)
		if err != nil {
			return demanda.Demanda{}, err
		}
		d.NumeroFamiliasAcompanhadas = n
	}
	if patch.Observacoes != nil {
		d.Observacoes = strings.TrimSpace(*patch.Observacoes)
	}

	c.demandas = replaceAt(c.demandas, i, d)
	c.changedLocked(ctx, localstore.KeyDemandas)
	return d, nil
}

// ExcluirDemanda remove a demanda de forma irreversível. Exige confirmação
// explícita.
func (c *Controller) ExcluirDemanda(ctx context.Context, id string, confirmado bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return err
	}
	if !confirmado {
		return ErrConfirmacaoNecessaria
	}
	i := c.indexDemandaLocked(id)
	if i < 0 {
		return ErrDemandaNaoEncontrada
	}
	out := make([]demanda.Demanda, 0, len(c.demandas)-1)
	out = append(out, c.demandas[:i]...)
	c.demandas = append(out, c.demandas[i+1:]...)
	c.changedLocked(ctx, localstore.KeyDemandas)
	c.logger.Info().Str("demanda_id", id).Msg("demanda excluída")
	return nil
}

func (c *Controller) AlternarFinalizada(ctx context.Context, id string) (demanda.Demanda, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Demanda{}, err
	}
	i := c.indexDemandaLocked(id)
	if i < 0 {
		return demanda.Demanda{}, ErrDemandaNaoEncontrada
	}
	d := c.demandas[i]
	d.Finalizada = !d.Finalizada
	c.demandas = replaceAt(c.demandas, i, d)
	c.changedLocked(ctx, localstore.KeyDemandas)
	return d, nil
}

func (c *Controller) AdicionarComentario(ctx context.Context, demandaID, texto string, autor demanda.Responsavel) (demanda.Comentario, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return demanda.Comentario{}, err
	}
	if strings.TrimSpace(autor.ID) == "" {
		return demanda.Comentario{}, ErrAutorObrigatorio
	}
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return demanda.Comentario{}, ErrTextoObrigatorio
	}
	i := c.indexDemandaLocked(demandaID)
	if i < 0 {
		return demanda.Comentario{}, ErrDemandaNaoEncontrada
	}

	novo := demanda.Comentario{
		ID:       util.NewID(),
		Texto:    texto,
		CriadoEm: demanda.Timestamp(c.now()),
		Autor:    autor,
	}
	d := c.demandas[i]
	comentarios := make([]demanda.Comentario, 0, len(d.Comentarios)+1)
	d.Comentarios = append(append(comentarios, d.Comentarios...), novo)
	c.demandas = replaceAt(c.demandas, i, d)
	c.changedLocked(ctx, localstore.KeyDemandas)
	return novo, nil
}

// ExcluirComentario remove o comentário; apenas o autor pode fazê-lo.
func (c *Controller) ExcluirComentario(ctx context.Context, demandaID, comentarioID string, autor demanda.Responsavel) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePronto(); err != nil {
		return err
	}
	if strings.TrimSpace(autor.ID) == "" {
		return ErrAutorObrigatorio
	}
	i := c.indexDemandaLocked(demandaID)
	if i < 0 {
		return ErrDemandaNaoEncontrada
	}
	d := c.demandas[i]
	j := -1
	for k, cm := range d.Comentarios {
		if cm.ID == comentarioID {
			j = k
			break
		}
	}
	if j < 0 {
		return ErrComentarioNaoEncontrado
	}
	if d.Comentarios[j].Autor.ID != autor.ID {
		return ErrSomenteAutor
	}
	comentarios := make([]demanda.Comentario, 0, len(d.Comentarios)-1)
	comentarios = append(comentarios, d.Comentarios[:j]...)
	d.Comentarios = append(comentarios, d.Comentarios[j+1:]...)
	c.demandas = replaceAt(c.demandas, i, d)
	c.changedLocked(ctx, localstore.KeyDemandas)
	return nil
}

// replaceAt devolve uma nova fatia com o elemento i trocado, preservando
// snapshots já entregues.
func replaceAt(list []demanda.Demanda, i int, d demanda.Demanda) []demanda.Demanda {
	out := append([]demanda.Demanda{}, list...)
	out[i] = d
	return out
}

// Demanda busca uma demanda pelo id.
func (c *Controller) Demanda(id string) (demanda.Demanda, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexDemandaLocked(id)
	if i < 0 {
		return demanda.Demanda{}, false
	}
	return c.demandas[i], true
}

// ListarDemandas aplica busca textual, projeto, responsável e situação.
func (c *Controller) ListarDemandas(f Filtro) []demanda.Demanda {
	c.mu.Lock()
	defer c.mu.Unlock()

	busca := strings.ToLower(strings.TrimSpace(f.Busca))
	out := make([]demanda.Demanda, 0, len(c.demandas))
	for _, d := range c.demandas {
		if busca != "" &&
			!strings.Contains(strings.ToLower(d.Titulo), busca) &&
			!strings.Contains(strings.ToLower(d.Descricao), busca) {
			continue
		}
		if f.ProjetoID != "" && f.ProjetoID != FiltroTodos && d.Projeto.ID != f.ProjetoID {
			continue
		}
		if !matchResponsavel(d, f.Responsavel, f.UsuarioAtualID) {
			continue
		}
		switch f.Situacao {
		case SituacaoAndamento:
			if d.Finalizada {
				continue
			}
		case SituacaoFinalizadas:
			if !d.Finalizada {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

func matchResponsavel(d demanda.Demanda, filtro, usuarioAtual string) bool {
	if filtro == "" || filtro == FiltroTodos {
		return true
	}
	alvo := filtro
	if filtro == FiltroEu {
		alvo = usuarioAtual
	}
	for _, r := range d.Responsaveis {
		if r.ID == alvo {
			return true
		}
	}
	return false
}

func (c *Controller) Resumo() Resumo {
	c.mu.Lock()
	defer c.mu.Unlock()
	var r Resumo
	for _, d := range c.demandas {
		if d.Finalizada {
			continue
		}
		r.Total++
		switch d.Prioridade {
		case demanda.PrioridadeAlta:
			r.Alta++
		case demanda.PrioridadeMedia:
			r.Media++
		case demanda.PrioridadeBaixa:
			r.Baixa++
		}
	}
	return r
}

// DemandasAntigas lista demandas abertas criadas há pelo menos dias dias.
// Datas ilegíveis são ignoradas.
func (c *Controller) DemandasAntigas(dias int) []demanda.Demanda {
	if dias <= 0 {
		dias = DefaultDiasAntiga
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	limite := time.Duration(dias) * 24 * time.Hour
	agora := c.now()
	out := []demanda.Demanda{}
	for _, d := range c.demandas {
		if d.Finalizada {
			continue
		}
		criada, ok := demanda.ParseTimestamp(d.CriadaEm)
		if !ok {
			continue
		}
		if agora.Sub(criada) >= limite {
			out = append(out, d)
		}
	}
	return out
}
