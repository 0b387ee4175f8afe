package normalize

import (
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// Users mantém apenas usuários com nome, e-mail válido e senha de 4 dígitos.
// Deduplica por id e por e-mail (sem diferenciar caixa).
func Users(list []any, now time.Time) []demanda.Usuario {
	out := make([]demanda.Usuario, 0, len(list))
	ids := make(map[string]struct{}, len(list))
	emails := make(map[string]struct{}, len(list))

	for _, item := range list {
		rec, ok := asRecord(item)
		if !ok {
			continue
		}
		nome := rec.text("nome")
		email := rec.text("email")
		senha := rec.rawText("senha")
		if nome == "" || !util.IsEmail(email) || util.ValidatePIN(senha) != nil {
			continue
		}
		id := rec.text("id")
		if id == "" {
			id = util.NewID()
		}
		if _, dup := ids[id]; dup {
			continue
		}
		key := util.TextKey(email)
		if _, dup := emails[key]; dup {
			continue
		}
		iniciais := rec.text("iniciais")
		if iniciais == "" {
			iniciais = util.Iniciais(nome)
		}
		ids[id] = struct{}{}
		emails[key] = struct{}{}
		out = append(out, demanda.Usuario{
			ID:       id,
			Nome:     nome,
			Email:    email,
			Senha:    senha,
			Cargo:    rec.text("cargo"),
			Iniciais: iniciais,
			CriadoEm: rec.timestamp("criadoEm", now),
		})
	}
	return out
}
