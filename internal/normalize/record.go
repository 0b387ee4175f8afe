// Package normalize saneia coleções vindas do armazenamento local ou da
// nuvem. Todas as funções são totais: entradas malformadas são descartadas
// registro a registro, nunca interrompem a carga.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apadrinhaparana/demandas/internal/demanda"
)

type record map[string]any

func asRecord(v any) (record, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	return record(m), true
}

func asList(v any) []any {
	list, _ := v.([]any)
	return list
}

// text devolve o valor textual aparado; números viram texto para ids legados.
func (r record) text(key string) string {
	switch v := r[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// rawText devolve strings sem aparar; outros tipos viram vazio.
func (r record) rawText(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r record) number(key string) (float64, bool) {
	var f float64
	switch v := r[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (r record) flag(key string, def bool) bool {
	if v, ok := r[key].(bool); ok {
		return v
	}
	return def
}

func (r record) timestamp(key string, now time.Time) string {
	if t, ok := demanda.ParseTimestamp(r.rawText(key)); ok {
		return demanda.Timestamp(t)
	}
	return demanda.Timestamp(now)
}

// nonNegativeInt aceita apenas inteiros >= 0; qualquer outro valor é omitido.
func (r record) nonNegativeInt(key string) *int {
	f, ok := r.number(key)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

func clampProgresso(r record) int {
	f, ok := r.number("progresso")
	if !ok {
		return 0
	}
	f = math.Round(f)
	switch {
	case f < 0:
		return 0
	case f > 100:
		return 100
	}
	return int(f)
}
