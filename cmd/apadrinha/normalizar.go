package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/apadrinhaparana/demandas/internal/localstore"
	"github.com/apadrinhaparana/demandas/internal/normalize"
)

func newNormalizarCmd() *cobra.Command {
	var (
		src    sourceFlags
		gravar bool
	)

	cmd := &cobra.Command{
		Use:   "normalizar",
		Short: "Confere quantos registros sobrevivem à normalização",
		Long: `Lê as coleções brutas, aplica a normalização e mostra, por coleção,
quantos registros foram lidos e quantos restaram. Com --gravar (origem local)
o resultado normalizado substitui o conteúdo do armazenamento local.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, local, closeFn, err := src.load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			snap := normalize.Snapshot(raw, time.Now())

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLEÇÃO\tLIDOS\tVÁLIDOS")
			fmt.Fprintf(tw, "projetos\t%d\t%d\n", len(raw.Projetos), len(snap.Projetos))
			fmt.Fprintf(tw, "demandas\t%d\t%d\n", len(raw.Demandas), len(snap.Demandas))
			fmt.Fprintf(tw, "agents\t%d\t%d\n", len(raw.Agents), len(snap.Agents))
			fmt.Fprintf(tw, "usuarios\t%d\t%d\n", len(raw.Usuarios), len(snap.Usuarios))
			if err := tw.Flush(); err != nil {
				return err
			}

			if !gravar {
				return nil
			}
			if local == nil {
				return fmt.Errorf("--gravar exige --origem %s", origemLocal)
			}
			ctx := cmd.Context()
			writes := []struct {
				key   string
				value any
			}{
				{localstore.KeyProjetos, snap.Projetos},
				{localstore.KeyDemandas, snap.Demandas},
				{localstore.KeyAgents, snap.Agents},
				{localstore.KeyUsuarios, snap.Usuarios},
			}
			for _, w := range writes {
				if err := local.Save(ctx, w.key, w.value); err != nil {
					return fmt.Errorf("gravar %s: %w", w.key, err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "armazenamento local atualizado")
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&gravar, "gravar", false, "grava o resultado no armazenamento local")
	return cmd
}
