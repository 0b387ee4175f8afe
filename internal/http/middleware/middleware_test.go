package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apadrinhaparana/demandas/internal/auth"
	"github.com/apadrinhaparana/demandas/internal/session"
)

const testSecret = "segredo-de-teste-com-mais-de-32-caracteres"

type lookupFunc func(ctx context.Context, id string) (string, error)

func (f lookupFunc) Lookup(ctx context.Context, id string) (string, error) { return f(ctx, id) }

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("corpo inválido: %v", err)
	}
	return body.Error.Code
}

func TestAuthInjectsSubjectAndSession(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	sessions := session.NewMemoryStore()
	if err := sessions.Save(context.Background(), "sess-1", "u1", time.Hour); err != nil {
		t.Fatal(err)
	}
	token, _, err := jwtManager.GenerateAccessToken("u1", "Maria Lima", "sess-1")
	if err != nil {
		t.Fatal(err)
	}

	var gotSubject, gotSession string
	handler := Auth(jwtManager, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSubject = GetSubject(r.Context())
		gotSession = GetSession(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/sessao", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotSubject != "u1" || gotSession != "sess-1" {
		t.Fatalf("contexto inesperado: %q %q", gotSubject, gotSession)
	}
}

func TestAuthRejects(t *testing.T) {
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	token, _, _ := jwtManager.GenerateAccessToken("u1", "", "sess-1")

	cases := []struct {
		name   string
		header string
		lookup lookupFunc
		status int
	}{
		{"sem token", "", nil, http.StatusUnauthorized},
		{"esquema errado", "Basic abc", nil, http.StatusUnauthorized},
		{"token inválido", "Bearer abc", nil, http.StatusUnauthorized},
		{"sessão encerrada", "Bearer " + token, func(context.Context, string) (string, error) {
			return "", session.ErrNotFound
		}, http.StatusUnauthorized},
		{"outro usuário", "Bearer " + token, func(context.Context, string) (string, error) {
			return "u2", nil
		}, http.StatusUnauthorized},
		{"store fora do ar", "Bearer " + token, func(context.Context, string) (string, error) {
			return "", errors.New("conexão recusada")
		}, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lookup := tc.lookup
			if lookup == nil {
				lookup = func(context.Context, string) (string, error) {
					t.Fatal("lookup não deveria ser chamado")
					return "", nil
				}
			}
			handler := Auth(jwtManager, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler não deveria executar")
			}))
			req := httptest.NewRequest(http.MethodGet, "/api/sessao", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, esperado %d", rec.Code, tc.status)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"https://app.exemplo.org", "*.apadrinha.org"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		origin  string
		allowed bool
	}{
		{"https://app.exemplo.org", true},
		{"https://painel.apadrinha.org", true},
		{"https://apadrinha.org", false},
		{"https://outro.org", false},
		{"", false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/estado", nil)
		if tc.origin != "" {
			req.Header.Set("Origin", tc.origin)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		got := rec.Header().Get("Access-Control-Allow-Origin") == tc.origin && tc.origin != ""
		if got != tc.allowed {
			t.Errorf("origin %q: liberado = %v, esperado %v", tc.origin, got, tc.allowed)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/api/demandas/d1", nil)
	req.Header.Set("Origin", "https://app.exemplo.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != corsMethods {
		t.Fatalf("métodos = %q", got)
	}
}

func TestRateLimiterPerKey(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("a") || !limiter.Allow("a") {
		t.Fatal("rajada inicial deveria passar")
	}
	if limiter.Allow("a") {
		t.Fatal("terceira requisição deveria ser barrada")
	}
	if !limiter.Allow("b") {
		t.Fatal("outra chave tem balde próprio")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("a") {
		t.Fatal("após um segundo um token deveria voltar")
	}

	now = now.Add(limiterMaxAge + time.Minute)
	limiter.Allow("c")
	if _, ok := limiter.store["b"]; ok {
		t.Fatal("chave ociosa deveria ser descartada")
	}
}

func TestIPRateLimitResponds429(t *testing.T) {
	limiter := NewRateLimiter(0.001, 1)
	handler := IPRateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("primeira requisição: %d", rec.Code)
	}
	rec := do()
	if rec.Code != http.StatusTooManyRequests || errorCode(t, rec) != "RATE_LIMIT" {
		t.Fatalf("esperava 429 RATE_LIMIT, veio %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatal("Retry-After ausente")
	}
}

func TestRecover(t *testing.T) {
	handler := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("falhou")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL" {
		t.Fatalf("esperava 500 INTERNAL, veio %d", rec.Code)
	}
}
