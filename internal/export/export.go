// Package export gera a planilha de demandas.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/apadrinhaparana/demandas/internal/demanda"
)

var ErrSemDemandas = errors.New("não há demandas para exportar")

const (
	SheetName = "Demandas"
	vazio     = "-"
)

// Fuso usado para a data de criação. O Paraná segue UTC-3 sem horário de
// verão.
var Fuso = time.FixedZone("BRT", -3*60*60)

var Header = []string{
	"Título",
	"Projeto",
	"Cidade",
	"Responsáveis",
	"Prioridade",
	"Descrição",
	"Progresso (%)",
	"Status",
	"Criada em",
	"Comentários",
}

var columnWidths = []float64{40, 25, 20, 30, 12, 50, 14, 14, 12, 12}

// Linha é uma demanda achatada para a planilha.
type Linha struct {
	Titulo       string
	Projeto      string
	Cidade       string
	Responsaveis string
	Prioridade   string
	Descricao    string
	Progresso    int
	Status       string
	CriadaEm     string
	Comentarios  int
}

func (l Linha) values() []any {
	return []any{
		l.Titulo, l.Projeto, l.Cidade, l.Responsaveis, l.Prioridade,
		l.Descricao, l.Progresso, l.Status, l.CriadaEm, l.Comentarios,
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return vazio
	}
	return s
}

// Linhas converte demandas em linhas, resolvendo a cidade pelo id.
func Linhas(demandas []demanda.Demanda, agents []demanda.Agent) []Linha {
	cidades := make(map[string]string, len(agents))
	for _, a := range agents {
		cidades[a.ID] = a.Nome
	}

	out := make([]Linha, 0, len(demandas))
	for _, d := range demandas {
		nomes := make([]string, 0, len(d.Responsaveis))
		for _, r := range d.Responsaveis {
			nomes = append(nomes, r.Nome)
		}
		status := "Em andamento"
		if d.Finalizada {
			status = "Finalizada"
		}
		criada := vazio
		if t, ok := demanda.ParseTimestamp(d.CriadaEm); ok {
			criada = t.In(Fuso).Format("02/01/2006")
		}
		out = append(out, Linha{
			Titulo:       d.Titulo,
			Projeto:      orDash(d.Projeto.Nome),
			Cidade:       orDash(cidades[d.AgentID]),
			Responsaveis: orDash(strings.Join(nomes, ", ")),
			Prioridade:   string(d.Prioridade),
			Descricao:    orDash(d.Descricao),
			Progresso:    d.Progresso,
			Status:       status,
			CriadaEm:     criada,
			Comentarios:  len(d.Comentarios),
		})
	}
	return out
}

// NomeArquivo monta base_AAAA-MM-DD.xlsx.
func NomeArquivo(base string, now time.Time) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "demandas"
	}
	return fmt.Sprintf("%s_%s.xlsx", base, now.UTC().Format("2006-01-02"))
}

// Planilha gera o arquivo xlsx com cabeçalho em negrito e congelado.
func Planilha(demandas []demanda.Demanda, agents []demanda.Agent) ([]byte, error) {
	if len(demandas) == 0 {
		return nil, ErrSemDemandas
	}

	f := excelize.NewFile()
	// WriteTo precisa do arquivo aberto; Close só no fim.
	index, err := f.NewSheet(SheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("criar aba: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("criar estilo do cabeçalho: %w", err)
	}

	if err := writeRow(f, 1, toAny(Header)); err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.CoordinatesToCellName(len(Header), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, headerStyle); err != nil {
		f.Close()
		return nil, fmt.Errorf("aplicar estilo do cabeçalho: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("converter coluna: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("largura da coluna %s: %w", col, err)
		}
	}

	for i, linha := range Linhas(demandas, agents) {
		if err := writeRow(f, i+2, linha.values()); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("congelar cabeçalho: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("gravar planilha: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("fechar planilha: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("gravar linha %d: %w", row, err)
	}
	return nil
}

func toAny(list []string) []any {
	out := make([]any, len(list))
	for i, s := range list {
		out[i] = s
	}
	return out
}
