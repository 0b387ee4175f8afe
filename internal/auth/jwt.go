package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims representa as informações presentes em um JWT de acesso. O ID
// (jti) é o identificador da sessão.
type Claims struct {
	Nome string `json:"nome,omitempty"`
	jwt.RegisteredClaims
}

// JWTManager encapsula geração e validação de tokens.
type JWTManager struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

// NewJWTManager cria o gerenciador com segredo e TTL configurados.
func NewJWTManager(secret string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secret), accessTTL: accessTTL, now: time.Now}
}

// TTL devolve a validade dos tokens emitidos.
func (m *JWTManager) TTL() time.Duration {
	return m.accessTTL
}

// GenerateAccessToken cria um JWT HS256 para o usuário e a sessão.
func (m *JWTManager) GenerateAccessToken(subject, nome, sessionID string) (string, time.Time, error) {
	now := m.now().UTC()
	expires := now.Add(m.accessTTL)

	claims := Claims{
		Nome: nome,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// ParseAndValidate verifica assinatura, expiração e presença de sujeito e
// sessão.
func (m *JWTManager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)

	token, err := parser.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("token inválido")
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, errors.New("token sem sessão")
	}
	return claims, nil
}
