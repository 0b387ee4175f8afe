package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/apadrinhaparana/demandas/internal/auth"
	"github.com/apadrinhaparana/demandas/internal/session"
)

type contextKey string

const (
	ContextKeySubject contextKey = "subject"
	ContextKeySession contextKey = "sessao"
)

// SessionLookup resolve o marcador de sessão para o id do usuário.
type SessionLookup interface {
	Lookup(ctx context.Context, id string) (string, error)
}

// Auth valida o JWT de acesso, confere o marcador de sessão e injeta
// usuário e sessão no contexto. Sessão revogada ou expirada invalida o token
// mesmo antes do exp.
func Auth(jwtManager *auth.JWTManager, sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "AUTH", "token ausente")
				return
			}

			claims, err := jwtManager.ParseAndValidate(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "AUTH", "token inválido")
				return
			}

			userID, err := sessions.Lookup(r.Context(), claims.ID)
			switch {
			case errors.Is(err, session.ErrNotFound):
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão encerrada")
				return
			case err != nil:
				log.Error().Err(err).Msg("falha ao consultar sessão")
				writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "sessões indisponíveis")
				return
			case userID != claims.Subject:
				writeError(w, http.StatusUnauthorized, "AUTH", "sessão inválida")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySubject, claims.Subject)
			ctx = context.WithValue(ctx, ContextKeySession, claims.ID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extrai o token do cabeçalho Authorization.
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// GetSubject recupera o id do usuário autenticado.
func GetSubject(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySubject).(string)
	return val
}

// GetSession recupera o id da sessão ativa.
func GetSession(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeySession).(string)
	return val
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data": nil,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	})
}
