package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/apadrinhaparana/demandas/internal/normalize"
)

func newSnapshotCmd() *cobra.Command {
	var (
		src       sourceFlags
		comSenhas bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Imprime o snapshot normalizado em JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _, closeFn, err := src.load(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			snap := normalize.Snapshot(raw, time.Now())
			if !comSenhas {
				for i := range snap.Usuarios {
					snap.Usuarios[i].Senha = ""
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&comSenhas, "com-senhas", false, "mantém as senhas dos usuários na saída")
	return cmd
}
