package normalize

import (
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// Agents normaliza cidades: nome obrigatório, ativo por padrão e data de
// criação válida (inválida vira now).
func Agents(list []any, now time.Time) []demanda.Agent {
	out := make([]demanda.Agent, 0, len(list))
	ids := make(map[string]struct{}, len(list))
	nomes := make(map[string]struct{}, len(list))

	for _, item := range list {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		nome := rec.text("nome")
		if nome == "" {
			continue
		}
		id := rec.text("id")
		if id == "" {
			id = util.NewID()
		}
		key := util.TextKey(nome)
		if _, dup := ids[id]; dup {
			continue
		}
		if _, dup := nomes[key]; dup {
			continue
		}
		ids[id] = struct{}{}
		nomes[key] = struct{}{}
		out = append(out, demanda.Agent{
			ID:       id,
			Nome:     nome,
			Ativo:    rec.flag("ativo", true),
			CriadoEm: rec.timestamp("criadoEm", now),
		})
	}
	return out
}
