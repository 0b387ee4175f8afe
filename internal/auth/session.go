package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

// NewSessionID cria um identificador de sessão aleatório.
func NewSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSessionID produz o hash SHA-256 base64 guardado no armazenamento, para
// que o identificador bruto só exista no token.
func HashSessionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// SessionKey monta a chave da sessão.
func SessionKey(id string) string {
	return "sessao:" + HashSessionID(id)
}
