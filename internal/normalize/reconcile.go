package normalize

import (
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// Reconcile incorpora os projetos sintetizados à coleção mestre e reaponta a
// cópia embutida de cada demanda para o registro canônico.
func Reconcile(projects, sintetizados []demanda.Projeto, demandas []demanda.Demanda) ([]demanda.Projeto, []demanda.Demanda) {
	merged := make([]demanda.Projeto, 0, len(projects)+len(sintetizados))
	idx := newProjectIndex(nil)
	for _, group := range [][]demanda.Projeto{projects, sintetizados} {
		for _, p := range group {
			if _, ok := idx.byID[p.ID]; ok {
				continue
			}
			if _, ok := idx.byName[util.TextKey(p.Nome)]; ok {
				continue
			}
			idx.add(p)
			merged = append(merged, p)
		}
	}

	out := make([]demanda.Demanda, 0, len(demandas))
	for _, d := range demandas {
		canonical, ok := idx.lookup(d.Projeto.ID, d.Projeto.Nome)
		if !ok {
			canonical = d.Projeto
			idx.add(canonical)
			merged = append(merged, canonical)
		}
		d.Projeto = canonical
		out = append(out, d)
	}
	return merged, out
}

// Snapshot executa todas as etapas na ordem usuários, projetos, cidades,
// demandas e reconciliação.
func Snapshot(raw demanda.RawSnapshot, now time.Time) demanda.Snapshot {
	usuarios := Users(raw.Usuarios, now)
	projetos := Projects(raw.Projetos)
	agents := Agents(raw.Agents, now)
	res := Demands(raw.Demandas, projetos, usuarios, agents, now)
	projetos, demandas := Reconcile(projetos, res.Sintetizados, res.Demandas)
	return demanda.Snapshot{
		Projetos: projetos,
		Demandas: demandas,
		Agents:   agents,
		Usuarios: usuarios,
	}
}
