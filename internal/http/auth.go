package http

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/auth"
	"github.com/apadrinhaparana/demandas/internal/demanda"
	httpmiddleware "github.com/apadrinhaparana/demandas/internal/http/middleware"
)

// usuarioView é o usuário sem a senha.
type usuarioView struct {
	ID       string `json:"id"`
	Nome     string `json:"nome"`
	Email    string `json:"email"`
	Cargo    string `json:"cargo"`
	Iniciais string `json:"iniciais"`
	CriadoEm string `json:"criadoEm"`
}

func viewUsuario(u demanda.Usuario) usuarioView {
	return usuarioView{ID: u.ID, Nome: u.Nome, Email: u.Email, Cargo: u.Cargo, Iniciais: u.Iniciais, CriadoEm: u.CriadoEm}
}

type sessaoResponse struct {
	Token    string      `json:"token"`
	ExpiraEm time.Time   `json:"expiraEm"`
	Usuario  usuarioView `json:"usuario"`
}

// Login autentica por e-mail e senha de quatro dígitos.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}

	res := h.ctrl.Autenticar(payload.Email, payload.Senha)
	if !res.Sucesso {
		status, code := authStatus(res)
		WriteError(w, status, code, res.Mensagem, nil)
		return
	}
	h.openSession(w, r, *res.Usuario, http.StatusOK)
}

// Registro cadastra o usuário e já abre a sessão.
func (h *Handler) Registro(w http.ResponseWriter, r *http.Request) {
	var payload app.NovoUsuario
	if !decodeJSON(w, r, &payload) {
		return
	}

	res := h.ctrl.Registrar(r.Context(), payload)
	if !res.Sucesso {
		status, code := authStatus(res)
		WriteError(w, status, code, res.Mensagem, nil)
		return
	}
	h.openSession(w, r, *res.Usuario, http.StatusCreated)
}

func (h *Handler) openSession(w http.ResponseWriter, r *http.Request, u demanda.Usuario, status int) {
	sessionID, err := auth.NewSessionID()
	if err != nil {
		log.Error().Err(err).Msg("falha ao gerar sessão")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	if err := h.sessions.Save(r.Context(), sessionID, u.ID, h.cfg.SessionTTL); err != nil {
		log.Error().Err(err).Msg("falha ao gravar sessão")
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "sessões indisponíveis", nil)
		return
	}
	token, expires, err := h.jwt.GenerateAccessToken(u.ID, u.Nome, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("falha ao assinar token")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
		return
	}
	log.Info().Str("usuario_id", u.ID).Msg("sessão aberta")
	WriteJSON(w, status, sessaoResponse{Token: token, ExpiraEm: expires, Usuario: viewUsuario(u)})
}

// Sessao restaura o usuário da sessão ativa.
func (h *Handler) Sessao(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"usuario": viewUsuario(u)})
}

// Logout remove o marcador de sessão; o token deixa de valer na hora.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := httpmiddleware.GetSession(r.Context())
	if err := h.sessions.Revoke(r.Context(), sessionID); err != nil {
		log.Error().Err(err).Msg("falha ao revogar sessão")
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "sessões indisponíveis", nil)
		return
	}
	h.dropNavigator(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

// currentUser resolve o usuário do token. Usuário removido da coleção
// encerra a sessão.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (demanda.Usuario, bool) {
	u, ok := h.ctrl.UsuarioPorID(httpmiddleware.GetSubject(r.Context()))
	if !ok {
		_ = h.sessions.Revoke(r.Context(), httpmiddleware.GetSession(r.Context()))
		WriteError(w, http.StatusUnauthorized, "AUTH", "usuário não encontrado", nil)
		return demanda.Usuario{}, false
	}
	return u, true
}
