package http

import (
	"net/http"

	"github.com/apadrinhaparana/demandas/internal/demanda"
)

// Estado expõe fase de inicialização, sincronização e aviso. Responde mesmo
// com falha fatal.
func (h *Handler) Estado(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ctrl.Estado())
}

func (h *Handler) FecharAviso(w http.ResponseWriter, r *http.Request) {
	h.ctrl.FecharAviso()
	w.WriteHeader(http.StatusNoContent)
}

type snapshotView struct {
	Projetos []demanda.Projeto `json:"projetos"`
	Demandas []demanda.Demanda `json:"demandas"`
	Agents   []demanda.Agent   `json:"agents"`
	Usuarios []usuarioView     `json:"usuarios"`
}

// Snapshot devolve as coleções sem as senhas dos usuários.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap := h.ctrl.Snapshot()
	usuarios := make([]usuarioView, 0, len(snap.Usuarios))
	for _, u := range snap.Usuarios {
		usuarios = append(usuarios, viewUsuario(u))
	}
	WriteJSON(w, http.StatusOK, snapshotView{
		Projetos: snap.Projetos,
		Demandas: snap.Demandas,
		Agents:   snap.Agents,
		Usuarios: usuarios,
	})
}
