package demanda

import "strings"

var projetosRemovidos = map[string]struct{}{
	"em andamento":              {},
	"finalizados":               {},
	"automação do whatsapp":     {},
	"sistema de acompanhamento": {},
	"ir na padaria":             {},
}

// ProjetoRemovido indica nomes legados que nunca devem voltar à lista.
func ProjetoRemovido(nome string) bool {
	_, ok := projetosRemovidos[strings.ToLower(strings.TrimSpace(nome))]
	return ok
}
