package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/export"
	"github.com/apadrinhaparana/demandas/internal/normalize"
)

func newExportarCmd() *cobra.Command {
	var (
		src      sourceFlags
		saida    string
		base     string
		situacao string
	)

	cmd := &cobra.Command{
		Use:   "exportar",
		Short: "Gera a planilha de demandas (.xlsx)",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _, closeFn, err := src.load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			now := time.Now()
			snap := normalize.Snapshot(raw, now)
			demandas := snap.Demandas
			switch app.Situacao(situacao) {
			case app.SituacaoTodas:
			case app.SituacaoAndamento, app.SituacaoFinalizadas:
				finalizadas := app.Situacao(situacao) == app.SituacaoFinalizadas
				filtradas := demandas[:0:0]
				for _, d := range demandas {
					if d.Finalizada == finalizadas {
						filtradas = append(filtradas, d)
					}
				}
				demandas = filtradas
			default:
				return fmt.Errorf("situação %q inválida", situacao)
			}

			data, err := export.Planilha(demandas, snap.Agents)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(saida, 0o755); err != nil {
				return err
			}
			path := filepath.Join(saida, export.NomeArquivo(base, now))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d demandas exportadas para %s\n", len(demandas), path)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringVarP(&saida, "saida", "o", ".", "diretório de destino")
	cmd.Flags().StringVar(&base, "nome", "demandas", "prefixo do arquivo")
	cmd.Flags().StringVar(&situacao, "situacao", "", "andamento ou finalizadas")
	return cmd
}
