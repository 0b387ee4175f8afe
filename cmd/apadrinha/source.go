package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/apadrinhaparana/demandas/internal/bootstrap"
	"github.com/apadrinhaparana/demandas/internal/cloud"
	"github.com/apadrinhaparana/demandas/internal/config"
	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/localstore"
)

const (
	origemLocal = "local"
	origemNuvem = "nuvem"
)

// sourceFlags escolhe de onde o snapshot é lido.
type sourceFlags struct {
	origem  string
	arquivo string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.origem, "origem", origemLocal, "origem dos dados: local ou nuvem")
	cmd.Flags().StringVarP(&s.arquivo, "arquivo", "f", "", "arquivo JSON com o documento agregado (ignora --origem)")
}

// load devolve as coleções brutas e, para a origem local, o store aberto
// para eventual gravação. close deve ser chamado pelo chamador.
func (s *sourceFlags) load(ctx context.Context) (raw demanda.RawSnapshot, local *localstore.Store, closeFn func(), err error) {
	closeFn = func() {}
	if s.arquivo != "" {
		raw, err = readSnapshotFile(s.arquivo)
		return raw, nil, closeFn, err
	}

	cfg, err := config.LoadStorage()
	if err != nil {
		return raw, nil, closeFn, fmt.Errorf("config: %w", err)
	}
	res, err := bootstrap.Open(ctx, cfg, log.Logger)
	if err != nil {
		return raw, nil, closeFn, err
	}
	closeFn = res.Close

	switch s.origem {
	case origemLocal:
		raw = demanda.RawSnapshot{
			Projetos: res.Local.Load(ctx, localstore.KeyProjetos),
			Demandas: res.Local.LoadDemandas(ctx),
			Agents:   res.Local.Load(ctx, localstore.KeyAgents),
			Usuarios: res.Local.Load(ctx, localstore.KeyUsuarios),
		}
		return raw, res.Local, closeFn, nil
	case origemNuvem:
		if res.Cloud == nil {
			return raw, nil, closeFn, errors.New("nuvem não configurada")
		}
		adapter := cloud.New(res.Cloud, bootstrap.CloudLocation(cfg), nil, log.Logger)
		raw, err = adapter.LoadSnapshot(ctx)
		return raw, nil, closeFn, err
	}
	return raw, nil, closeFn, fmt.Errorf("origem %q inválida", s.origem)
}

func readSnapshotFile(path string) (demanda.RawSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return demanda.RawSnapshot{}, err
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return demanda.RawSnapshot{}, fmt.Errorf("%s: JSON inválido: %w", path, err)
	}
	return cloud.RawFromFields(fields), nil
}
