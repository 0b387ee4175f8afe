package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type nomePayload struct {
	Nome string `json:"nome"`
}

func (h *Handler) ListProjetos(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ctrl.Projetos())
}

// CreateProjeto devolve o projeto existente com o mesmo nome ou cria um novo.
func (h *Handler) CreateProjeto(w http.ResponseWriter, r *http.Request) {
	var payload nomePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, ok := h.ctrl.AdicionarProjeto(r.Context(), payload.Nome)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nome de projeto inválido", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) ListResponsaveis(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ctrl.Responsaveis())
}

// ListCidades aceita ?busca= sobre o nome.
func (h *Handler) ListCidades(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ctrl.CidadesFiltradas(r.URL.Query().Get("busca")))
}

func (h *Handler) CreateCidade(w http.ResponseWriter, r *http.Request) {
	var payload nomePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	cidade, err := h.ctrl.CriarCidade(r.Context(), payload.Nome)
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, cidade)
}

// AdicionarCidade devolve a cidade com o mesmo nome, reativando-a se estiver
// inativa, ou cria uma nova.
func (h *Handler) AdicionarCidade(w http.ResponseWriter, r *http.Request) {
	var payload nomePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	id, ok := h.ctrl.AdicionarCidade(r.Context(), payload.Nome)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "nome de cidade inválido", nil)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) UpdateCidade(w http.ResponseWriter, r *http.Request) {
	var payload nomePayload
	if !decodeJSON(w, r, &payload) {
		return
	}
	cidade, err := h.ctrl.EditarCidade(r.Context(), chi.URLParam(r, "id"), payload.Nome)
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cidade)
}

func (h *Handler) ToggleCidadeAtiva(w http.ResponseWriter, r *http.Request) {
	cidade, err := h.ctrl.AlternarCidadeAtiva(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cidade)
}

func (h *Handler) DeleteCidade(w http.ResponseWriter, r *http.Request) {
	if err := h.ctrl.ExcluirCidade(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
