package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/export"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportDemandas baixa a planilha das demandas filtradas com os mesmos
// parâmetros da listagem. ?arquivo= muda o prefixo do nome.
func (h *Handler) ExportDemandas(w http.ResponseWriter, r *http.Request) {
	u, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	demandas := h.ctrl.ListarDemandas(app.Filtro{
		Busca:          q.Get("busca"),
		ProjetoID:      q.Get("projeto"),
		Responsavel:    q.Get("responsavel"),
		Situacao:       app.Situacao(q.Get("situacao")),
		UsuarioAtualID: u.ID,
	})

	data, err := export.Planilha(demandas, h.ctrl.Cidades())
	if err != nil {
		writeAppError(w, err)
		return
	}

	nome := export.NomeArquivo(q.Get("arquivo"), h.now())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", nome))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
