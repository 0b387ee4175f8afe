package util

import (
	"strings"
	"unicode/utf8"
)

// Iniciais gera até duas letras a partir do nome.
// Uma palavra usa as duas primeiras letras; várias usam a primeira letra da
// primeira e da última palavra.
func Iniciais(nome string) string {
	palavras := strings.Fields(nome)
	switch len(palavras) {
	case 0:
		return ""
	case 1:
		return strings.ToUpper(prefix(palavras[0], 2))
	default:
		primeira := prefix(palavras[0], 1)
		ultima := prefix(palavras[len(palavras)-1], 1)
		return strings.ToUpper(primeira + ultima)
	}
}

func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
