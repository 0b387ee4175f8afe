package auth

import (
	"strings"
	"testing"
	"time"
)

const secret = "segredo-de-teste-com-mais-de-32-caracteres"

func TestGenerateAndParse(t *testing.T) {
	m := NewJWTManager(secret, time.Hour)
	token, expires, err := m.GenerateAccessToken("u1", "Maria", "sess-1")
	if err != nil {
		t.Fatalf("erro ao gerar token: %v", err)
	}
	if time.Until(expires) <= 0 {
		t.Fatalf("expiração no passado: %v", expires)
	}

	claims, err := m.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("token deveria ser válido: %v", err)
	}
	if claims.Subject != "u1" || claims.ID != "sess-1" || claims.Nome != "Maria" {
		t.Fatalf("claims inesperadas: %+v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	m := NewJWTManager(secret, time.Hour)
	token, _, _ := m.GenerateAccessToken("u1", "", "sess-1")

	other := NewJWTManager(secret+"x", time.Hour)
	if _, err := other.ParseAndValidate(token); err == nil {
		t.Fatal("assinatura com outro segredo deveria falhar")
	}

	expired := NewJWTManager(secret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _ := expired.GenerateAccessToken("u1", "", "sess-1")
	if _, err := m.ParseAndValidate(old); err == nil {
		t.Fatal("token expirado deveria falhar")
	}

	semSessao, _, _ := m.GenerateAccessToken("u1", "", "")
	if _, err := m.ParseAndValidate(semSessao); err == nil {
		t.Fatal("token sem jti deveria falhar")
	}
}

func TestSessionIDs(t *testing.T) {
	a, err := NewSessionID()
	if err != nil {
		t.Fatalf("erro: %v", err)
	}
	b, _ := NewSessionID()
	if a == b || len(a) < 40 {
		t.Fatalf("ids inesperados: %q %q", a, b)
	}
	if HashSessionID(a) != HashSessionID(a) || HashSessionID(a) == a {
		t.Fatal("hash deveria ser determinístico e diferente do id")
	}
	if !strings.HasPrefix(SessionKey(a), "sessao:") || strings.Contains(SessionKey(a), a) {
		t.Fatalf("chave inesperada: %q", SessionKey(a))
	}
}
