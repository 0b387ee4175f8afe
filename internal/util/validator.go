package util

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrNomeObrigatorio  = errors.New("nome obrigatório")
	ErrEmailObrigatorio = errors.New("email obrigatório")
	ErrEmailInvalido    = errors.New("email inválido")
	ErrSenhaInvalida    = errors.New("senha deve ter exatamente 4 dígitos numéricos")
)

// ValidateEmail retorna erro para e-mails inválidos.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailObrigatorio
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrEmailInvalido
	}
	return nil
}

// IsEmail indica se o valor tem formato de e-mail.
func IsEmail(email string) bool {
	return ValidateEmail(email) == nil
}

// ValidatePIN exige senha com exatamente quatro dígitos decimais.
func ValidatePIN(senha string) error {
	if len(senha) != 4 {
		return ErrSenhaInvalida
	}
	for i := 0; i < len(senha); i++ {
		if senha[i] < '0' || senha[i] > '9' {
			return ErrSenhaInvalida
		}
	}
	return nil
}

// SameText compara textos ignorando espaços nas bordas e caixa.
func SameText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// TextKey devolve a chave usada para deduplicar nomes e e-mails.
func TextKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
