package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/export"
	"github.com/apadrinhaparana/demandas/internal/util"
)

// writeAppError traduz os erros do controlador para status e código.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrNaoPronto), errors.Is(err, app.ErrEncerrado):
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", err.Error(), nil)
	case errors.Is(err, app.ErrAutorObrigatorio):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, app.ErrSomenteAutor):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	case errors.Is(err, app.ErrProjetoNaoEncontrado),
		errors.Is(err, app.ErrDemandaNaoEncontrada),
		errors.Is(err, app.ErrComentarioNaoEncontrado),
		errors.Is(err, app.ErrCidadeNaoEncontrada):
		WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, app.ErrCidadeDuplicada):
		WriteError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, app.ErrConfirmacaoNecessaria):
		WriteError(w, http.StatusPreconditionRequired, "CONFIRMATION", err.Error(), nil)
	case errors.Is(err, app.ErrTituloObrigatorio),
		errors.Is(err, app.ErrTextoObrigatorio),
		errors.Is(err, app.ErrPrioridadeInvalida),
		errors.Is(err, app.ErrNumeroInvalido),
		errors.Is(err, util.ErrNomeObrigatorio),
		errors.Is(err, export.ErrSemDemandas):
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		log.Error().Err(err).Msg("erro inesperado")
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

// authStatus escolhe o status de um AuthResult recusado.
func authStatus(res app.AuthResult) (int, string) {
	switch res.Mensagem {
	case app.MensagemCredenciaisInvalidas:
		return http.StatusUnauthorized, "AUTH"
	case app.MensagemEmailDuplicado:
		return http.StatusConflict, "CONFLICT"
	case app.MensagemIndisponivel, app.MensagemCadastroOffline:
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case app.MensagemCadastroFalhou:
		return http.StatusBadGateway, "UPSTREAM"
	}
	return http.StatusBadRequest, "VALIDATION"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return false
	}
	return true
}
