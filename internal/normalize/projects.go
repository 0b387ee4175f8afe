package normalize

import (
	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// Projects descarta entradas inválidas ou removidas e deduplica por id e por
// nome, preservando a primeira ocorrência.
func Projects(list []any) []demanda.Projeto {
	out := make([]demanda.Projeto, 0, len(list))
	ids := make(map[string]struct{}, len(list))
	nomes := make(map[string]struct{}, len(list))

	for _, item := range list {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		nome := rec.text("nome")
		if nome == "" || demanda.ProjetoRemovido(nome) {
			continue
		}
		id := rec.text("id")
		if id == "" {
			id = util.NewID()
		}
		if _, dup := ids[id]; dup {
			continue
		}
		key := util.TextKey(nome)
		if _, dup := nomes[key]; dup {
			continue
		}
		ids[id] = struct{}{}
		nomes[key] = struct{}{}
		out = append(out, demanda.Projeto{ID: id, Nome: nome})
	}
	return out
}
