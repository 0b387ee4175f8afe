package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const snapshotJSON = `{
  "projetos": [
    {"id": "p1", "nome": "Acolhimento"},
    {"id": "p2", "nome": "Ir na padaria"}
  ],
  "demandas": [
    {"id": "d1", "titulo": "Visitar abrigo", "projeto": {"id": "p1", "nome": "Acolhimento"}, "finalizada": false, "agentId": "c1"},
    {"id": "d2", "titulo": "Relatório", "projeto": {"id": "p1", "nome": "Acolhimento"}, "finalizada": true},
    {"id": "d3", "titulo": ""}
  ],
  "agents": [{"id": "c1", "nome": "Curitiba"}],
  "usuarios": [
    {"id": "u1", "nome": "Maria Lima", "email": "maria@x.com", "senha": "1111"},
    {"id": "u2", "nome": "Sem senha", "email": "x@x.com"}
  ]
}`

func writeSnapshot(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dados.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshotJSON), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizarReportsCounts(t *testing.T) {
	out, err := execute(t, "normalizar", "--arquivo", writeSnapshot(t))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	require.Equal(t, []string{"projetos", "2", "1"}, strings.Fields(lines[1]))
	require.Equal(t, []string{"demandas", "3", "2"}, strings.Fields(lines[2]))
	require.Equal(t, []string{"agents", "1", "1"}, strings.Fields(lines[3]))
	require.Equal(t, []string{"usuarios", "2", "1"}, strings.Fields(lines[4]))
}

func TestNormalizarGravarRequiresLocal(t *testing.T) {
	_, err := execute(t, "normalizar", "--arquivo", writeSnapshot(t), "--gravar")
	require.Error(t, err)
}

func TestSnapshotHidesSenhas(t *testing.T) {
	out, err := execute(t, "snapshot", "--arquivo", writeSnapshot(t))
	require.NoError(t, err)
	require.Contains(t, out, `"Maria Lima"`)
	require.NotContains(t, out, `"1111"`)

	out, err = execute(t, "snapshot", "--arquivo", writeSnapshot(t), "--com-senhas")
	require.NoError(t, err)
	require.Contains(t, out, `"1111"`)
}

func TestExportarWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "exportar", "--arquivo", writeSnapshot(t), "--saida", dir, "--nome", "relatorio", "--situacao", "andamento")
	require.NoError(t, err)
	require.Contains(t, out, "1 demandas exportadas")

	matches, err := filepath.Glob(filepath.Join(dir, "relatorio_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Demandas")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Visitar abrigo", rows[1][0])
	require.Equal(t, "Curitiba", rows[1][2])
}

func TestExportarRejectsInvalidSituacao(t *testing.T) {
	_, err := execute(t, "exportar", "--arquivo", writeSnapshot(t), "--saida", t.TempDir(), "--situacao", "arquivadas")
	require.Error(t, err)
}
