package normalize

import (
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// DemandsResult traz as demandas normalizadas e os projetos sintetizados a
// partir de cópias embutidas que não casaram com a coleção canônica.
type DemandsResult struct {
	Demandas     []demanda.Demanda
	Sintetizados []demanda.Projeto
}

type projectIndex struct {
	byID   map[string]demanda.Projeto
	byName map[string]demanda.Projeto
}

func newProjectIndex(projects []demanda.Projeto) *projectIndex {
	idx := &projectIndex{
		byID:   make(map[string]demanda.Projeto, len(projects)),
		byName: make(map[string]demanda.Projeto, len(projects)),
	}
	for _, p := range projects {
		idx.add(p)
	}
	return idx
}

func (idx *projectIndex) add(p demanda.Projeto) {
	if _, ok := idx.byID[p.ID]; !ok {
		idx.byID[p.ID] = p
	}
	key := util.TextKey(p.Nome)
	if _, ok := idx.byName[key]; !ok {
		idx.byName[key] = p
	}
}

func (idx *projectIndex) lookup(id, nome string) (demanda.Projeto, bool) {
	if id != "" {
		if p, ok := idx.byID[id]; ok {
			return p, true
		}
	}
	if nome != "" {
		if p, ok := idx.byName[util.TextKey(nome)]; ok {
			return p, true
		}
	}
	return demanda.Projeto{}, false
}

// Demands normaliza demandas contra as coleções já normalizadas.
func Demands(list []any, projects []demanda.Projeto, users []demanda.Usuario, agents []demanda.Agent, now time.Time) DemandsResult {
	result := DemandsResult{
		Demandas:     make([]demanda.Demanda, 0, len(list)),
		Sintetizados: []demanda.Projeto{},
	}

	idx := newProjectIndex(projects)
	usersByID := make(map[string]demanda.Usuario, len(users))
	for _, u := range users {
		usersByID[u.ID] = u
	}
	agentIDs := make(map[string]struct{}, len(agents))
	for _, a := range agents {
		agentIDs[a.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(list))

	for _, item := range list {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		id := rec.text("id")
		if id == "" {
			id = util.NewID()
		}
		if _, dup := seen[id]; dup {
			continue
		}
		titulo := rec.text("titulo")
		if titulo == "" {
			continue
		}

		pid, pnome := embeddedProject(rec)
		if pnome != "" && demanda.ProjetoRemovido(pnome) {
			continue
		}
		projeto, found := idx.lookup(pid, pnome)
		if !found {
			if pnome == "" {
				continue
			}
			if pid == "" {
				pid = util.NewID()
			}
			projeto = demanda.Projeto{ID: pid, Nome: pnome}
			idx.add(projeto)
			result.Sintetizados = append(result.Sintetizados, projeto)
		}
		if demanda.ProjetoRemovido(projeto.Nome) {
			continue
		}

		d := demanda.Demanda{
			ID:                         id,
			Titulo:                     titulo,
			Projeto:                    projeto,
			Responsaveis:               resolveResponsaveis(asList(rec["responsaveis"]), usersByID, users),
			Prioridade:                 demanda.NormalizePrioridade(rec.text("prioridade")),
			Descricao:                  rec.rawText("descricao"),
			Progresso:                  clampProgresso(rec),
			CriadaEm:                   rec.timestamp("criadaEm", now),
			Finalizada:                 rec.flag("finalizada", false),
			Comentarios:                Comments(asList(rec["comentarios"]), usersByID, now),
			NumeroCriancasAcolhidas:    rec.nonNegativeInt("numeroCriancasAcolhidas"),
			NumeroFamiliasAcompanhadas: rec.nonNegativeInt("numeroFamiliasAcompanhadas"),
			Observacoes:                rec.text("observacoes"),
		}
		if agentID := rec.text("agentId"); agentID != "" {
			if _, ok := agentIDs[agentID]; ok {
				d.AgentID = agentID
			}
		}

		seen[id] = struct{}{}
		result.Demandas = append(result.Demandas, d)
	}
	return result
}

// embeddedProject extrai id e nome do projeto nos formatos conhecidos:
// objeto embutido, nome solto ou projetoId no topo do registro.
func embeddedProject(rec record) (id, nome string) {
	switch v := rec["projeto"].(type) {
	case map[string]any:
		p := record(v)
		id, nome = p.text("id"), p.text("nome")
	case string:
		nome = rec.text("projeto")
	}
	if id == "" {
		id = rec.text("projetoId")
	}
	if nome == "" {
		nome = rec.text("projetoNome")
	}
	return id, nome
}

func resolveResponsaveis(list []any, usersByID map[string]demanda.Usuario, users []demanda.Usuario) []demanda.Responsavel {
	out := make([]demanda.Responsavel, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		var id string
		switch v := item.(type) {
		case string:
			id = v
		case map[string]any:
			id = record(v).text("id")
		}
		u, ok := usersByID[id]
		if !ok {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		out = append(out, u.Responsavel())
	}
	if len(out) == 0 && len(users) > 0 {
		out = append(out, users[0].Responsavel())
	}
	return out
}

// Comments normaliza comentários de uma demanda mantendo a ordem de inserção.
func Comments(list []any, usersByID map[string]demanda.Usuario, now time.Time) []demanda.Comentario {
	out := make([]demanda.Comentario, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, item := range list {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		texto := rec.text("texto")
		if texto == "" {
			continue
		}
		autor, ok := resolveAutor(rec["autor"], usersByID)
		if !ok {
			continue
		}
		id := rec.text("id")
		if id == "" {
			id = util.NewID()
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, demanda.Comentario{
			ID:       id,
			Texto:    texto,
			CriadoEm: rec.timestamp("criadoEm", now),
			Autor:    autor,
		})
	}
	return out
}

func resolveAutor(v any, usersByID map[string]demanda.Usuario) (demanda.Responsavel, bool) {
	rec, ok := asRecord(v)
	if !ok {
		return demanda.Responsavel{}, false
	}
	id := rec.text("id")
	if u, ok := usersByID[id]; ok && id != "" {
		return u.Responsavel(), true
	}
	nome := rec.text("nome")
	if nome == "" {
		return demanda.Responsavel{}, false
	}
	if id == "" {
		id = util.NewID()
	}
	iniciais := rec.text("iniciais")
	if iniciais == "" {
		iniciais = util.Iniciais(nome)
	}
	return demanda.Responsavel{ID: id, Nome: nome, Iniciais: iniciais}, true
}
