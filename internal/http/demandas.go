package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/apadrinhaparana/demandas/internal/app"
)

// ListDemandas aceita busca, projeto, responsavel (todos, eu ou id) e
// situacao (andamento ou finalizadas).
func (h *Handler) ListDemandas(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()

	situacao := app.Situacao(strings.ToLower(strings.TrimSpace(q.Get("situacao"))))
	switch situacao {
	case app.SituacaoTodas, app.SituacaoAndamento, app.SituacaoFinalizadas:
	default:
		WriteError(w, http.StatusBadRequest, "VALIDATION", "situação inválida", nil)
		return
	}

	lista := h.ctrl.ListarDemandas(app.Filtro{
		Busca:          q.Get("busca"),
		ProjetoID:      strings.TrimSpace(q.Get("projeto")),
		Responsavel:    strings.TrimSpace(q.Get("responsavel")),
		Situacao:       situacao,
		UsuarioAtualID: u.ID,
	})
	WriteJSON(w, http.StatusOK, lista)
}

func (h *Handler) GetDemanda(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ctrl.Demanda(chi.URLParam(r, "id"))
	if !ok {
		writeAppError(w, app.ErrDemandaNaoEncontrada)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) CreateDemanda(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var payload app.NovaDemanda
	if !decodeJSON(w, r, &payload) {
		return
	}

	d, err := h.ctrl.CriarDemanda(r.Context(), payload, u.Responsavel())
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, d)
}

func (h *Handler) UpdateDemanda(w http.ResponseWriter, r *http.Request) {
	var patch app.EdicaoDemanda
	if !decodeJSON(w, r, &patch) {
		return
	}
	d, err := h.ctrl.EditarDemanda(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

// DeleteDemanda exige confirmar=true; a exclusão não tem volta.
func (h *Handler) DeleteDemanda(w http.ResponseWriter, r *http.Request) {
	confirmado, _ := strconv.ParseBool(r.URL.Query().Get("confirmar"))
	if err := h.ctrl.ExcluirDemanda(r.Context(), chi.URLParam(r, "id"), confirmado); err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ToggleFinalizada(w http.ResponseWriter, r *http.Request) {
	d, err := h.ctrl.AlternarFinalizada(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) AddComentario(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var payload struct {
		Texto string `json:"texto"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	c, err := h.ctrl.AdicionarComentario(r.Context(), chi.URLParam(r, "id"), payload.Texto, u.Responsavel())
	if err != nil {
		writeAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) DeleteComentario(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	err := h.ctrl.ExcluirComentario(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "comentarioID"), u.Responsavel())
	if err != nil {
		writeAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResumoDemandas(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.ctrl.Resumo())
}

// DemandasAntigas usa ?dias= ou STALE_DEMAND_DAYS.
func (h *Handler) DemandasAntigas(w http.ResponseWriter, r *http.Request) {
	dias := h.cfg.StaleDemandDays
	if raw := strings.TrimSpace(r.URL.Query().Get("dias")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "dias inválido", nil)
			return
		}
		dias = n
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"dias":     dias,
		"demandas": h.ctrl.DemandasAntigas(dias),
	})
}
