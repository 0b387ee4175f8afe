package normalize

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/apadrinhaparana/demandas/internal/demanda"
)

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func decode(t *testing.T, raw string) []any {
	t.Helper()
	var out []any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestProjectsDedupAndBlocklist(t *testing.T) {
	list := decode(t, `[
		{"id":"p1","nome":"Família Acolhedora"},
		{"id":"p1","nome":"Outro nome"},
		{"id":"p2","nome":"  família acolhedora "},
		{"id":"p3","nome":"Em andamento"},
		{"id":"p4","nome":"   "},
		"lixo",
		null,
		42,
		{"nome":"Apadrinhamento Afetivo"},
		{"id":7,"nome":"Projeto numérico"}
	]`)

	got := Projects(list)
	require.Len(t, got, 3)
	require.Equal(t, demanda.Projeto{ID: "p1", Nome: "Família Acolhedora"}, got[0])
	require.Equal(t, "Apadrinhamento Afetivo", got[1].Nome)
	require.NotEmpty(t, got[1].ID)
	require.Equal(t, "7", got[2].ID)

	ids := map[string]bool{}
	nomes := map[string]bool{}
	for _, p := range got {
		require.False(t, ids[p.ID], "id duplicado %s", p.ID)
		require.False(t, nomes[strings.ToLower(p.Nome)], "nome duplicado %s", p.Nome)
		require.False(t, demanda.ProjetoRemovido(p.Nome))
		ids[p.ID] = true
		nomes[strings.ToLower(p.Nome)] = true
	}
}

func TestProjectsNeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{`[]`, `[[],[1,2],{"nome":{}},{"nome":["x"]},{"id":{},"nome":"ok"}]`}
	for _, raw := range inputs {
		require.NotPanics(t, func() { Projects(decode(t, raw)) })
	}
	require.Empty(t, Projects(nil))
}

func TestUsersShapeChecks(t *testing.T) {
	list := decode(t, `[
		{"id":"u1","nome":"Ana Souza","email":"ana@x.com","senha":"1234","cargo":"Psicóloga"},
		{"id":"u2","nome":"Ana Dup","email":"ANA@X.COM","senha":"4321"},
		{"id":"u1","nome":"Id Dup","email":"outro@x.com","senha":"4321"},
		{"id":"u3","nome":"Senha curta","email":"curta@x.com","senha":"123"},
		{"id":"u4","nome":"Senha longa","email":"longa@x.com","senha":"12345"},
		{"id":"u5","nome":"Senha letra","email":"letra@x.com","senha":"12a4"},
		{"id":"u6","nome":"Senha número","email":"numero@x.com","senha":1234},
		{"id":"u7","nome":"","email":"vazio@x.com","senha":"1234"},
		{"id":"u8","nome":"Sem email","email":"semarroba","senha":"1234"},
		{"nome":"Thami","email":"thami@x.com","senha":"0007","criadoEm":"ontem"}
	]`)

	got := Users(list, fixedNow)
	require.Len(t, got, 2)
	require.Equal(t, "u1", got[0].ID)
	require.Equal(t, "AS", got[0].Iniciais)
	require.Equal(t, "Psicóloga", got[0].Cargo)
	require.Equal(t, "Thami", got[1].Nome)
	require.Equal(t, "TH", got[1].Iniciais)
	require.Equal(t, demanda.Timestamp(fixedNow), got[1].CriadoEm)
	for _, u := range got {
		require.Len(t, u.Senha, 4)
	}
}

func TestAgentsDefaults(t *testing.T) {
	list := decode(t, `[
		{"id":"c1","nome":"Curitiba","criadoEm":"2025-01-02T03:04:05Z"},
		{"id":"c2","nome":"curitiba"},
		{"id":"c3","nome":"Londrina","ativo":false,"criadoEm":"???"},
		{"id":"c4","nome":""},
		{"id":"c5","nome":"Maringá","ativo":"não"}
	]`)

	got := Agents(list, fixedNow)
	require.Len(t, got, 3)
	require.True(t, got[0].Ativo)
	require.Equal(t, "2025-01-02T03:04:05Z", got[0].CriadoEm)
	require.False(t, got[1].Ativo)
	require.Equal(t, demanda.Timestamp(fixedNow), got[1].CriadoEm)
	require.True(t, got[2].Ativo)
}

func TestDemandsResponsaveisFallbackToFirstUser(t *testing.T) {
	users := Users(decode(t, `[
		{"id":"u1","nome":"Alana Brígida","email":"alana@x.com","senha":"1111"},
		{"id":"u2","nome":"Thami","email":"thami@x.com","senha":"2222"}
	]`), fixedNow)
	projects := Projects(decode(t, `[{"id":"p1","nome":"Acolhimento"}]`))

	res := Demands(decode(t, `[
		{"id":"d1","titulo":"Visita","projeto":{"id":"p1","nome":"Acolhimento"},"responsaveis":[]}
	]`), projects, users, nil, fixedNow)

	require.Len(t, res.Demandas, 1)
	require.Equal(t, []demanda.Responsavel{{ID: "u1", Nome: "Alana Brígida", Iniciais: "AB"}}, res.Demandas[0].Responsaveis)
}

func TestDemandsFieldRules(t *testing.T) {
	users := Users(decode(t, `[
		{"id":"u1","nome":"Alana Brígida","email":"alana@x.com","senha":"1111"},
		{"id":"u2","nome":"Thami","email":"thami@x.com","senha":"2222"}
	]`), fixedNow)
	projects := Projects(decode(t, `[{"id":"p1","nome":"Acolhimento"}]`))
	agents := Agents(decode(t, `[{"id":"c1","nome":"Curitiba","ativo":false}]`), fixedNow)

	res := Demands(decode(t, `[
		{"id":"d1","titulo":"  Reunião  ","projeto":{"id":"p1"},"responsaveis":["u2",{"id":"u2"},{"id":"zz"}],
		 "prioridade":"alta","progresso":140.6,"agentId":"c1","numeroCriancasAcolhidas":3,
		 "comentarios":[
			{"id":"k1","texto":"ok","autor":{"id":"u1"}},
			{"texto":"  ","autor":{"id":"u1"}},
			{"texto":"sem autor"},
			{"texto":"externo","autor":{"nome":"Maria da Silva"}},
			{"id":"k1","texto":"duplicado","autor":{"id":"u1"}}
		 ]},
		{"id":"d2","titulo":"Por nome","projeto":{"id":"px","nome":"ACOLHIMENTO"},"progresso":"-5","agentId":"c9","numeroCriancasAcolhidas":2.5},
		{"id":"d1","titulo":"duplicada","projeto":{"id":"p1"}},
		{"id":"d3","titulo":"","projeto":{"id":"p1"}},
		{"id":"d4","titulo":"Removido","projeto":{"id":"p9","nome":"Finalizados"}},
		{"id":"d5","titulo":"Sem projeto"},
		{"id":"d6","titulo":"Texto livre","prioridade":"urgente","progresso":"abc","numeroCriancasAcolhidas":-1,"projeto":{"nome":"Projeto Novo"}},
		{"id":"d7","titulo":"Legado","projeto":"projeto novo"}
	]`), projects, users, agents, fixedNow)

	require.Len(t, res.Demandas, 4)

	d1 := res.Demandas[0]
	require.Equal(t, "Reunião", d1.Titulo)
	require.Equal(t, projects[0], d1.Projeto)
	require.Equal(t, []demanda.Responsavel{{ID: "u2", Nome: "Thami", Iniciais: "TH"}}, d1.Responsaveis)
	require.Equal(t, demanda.PrioridadeAlta, d1.Prioridade)
	require.Equal(t, 100, d1.Progresso)
	require.Equal(t, "c1", d1.AgentID, "cidade inativa continua válida")
	require.NotNil(t, d1.NumeroCriancasAcolhidas)
	require.Equal(t, 3, *d1.NumeroCriancasAcolhidas)
	require.Len(t, d1.Comentarios, 2)
	require.Equal(t, "Alana Brígida", d1.Comentarios[0].Autor.Nome)
	require.Equal(t, "MS", d1.Comentarios[1].Autor.Iniciais)
	require.NotEmpty(t, d1.Comentarios[1].Autor.ID)
	require.Equal(t, demanda.Timestamp(fixedNow), d1.Comentarios[1].CriadoEm)

	d2 := res.Demandas[1]
	require.Equal(t, "p1", d2.Projeto.ID)
	require.Equal(t, 0, d2.Progresso)
	require.Empty(t, d2.AgentID)
	require.Nil(t, d2.NumeroCriancasAcolhidas)
	require.Equal(t, demanda.PrioridadeMedia, d2.Prioridade)

	d6 := res.Demandas[2]
	require.Equal(t, "Projeto Novo", d6.Projeto.Nome)
	require.Equal(t, demanda.PrioridadePadrao, d6.Prioridade)
	require.Equal(t, 0, d6.Progresso)
	require.Nil(t, d6.NumeroCriancasAcolhidas)

	d7 := res.Demandas[3]
	require.Equal(t, d6.Projeto, d7.Projeto, "projetos sintetizados são compartilhados")
	require.Len(t, res.Sintetizados, 1)
}

func TestDemandsWithoutUsersKeepEmptyResponsaveis(t *testing.T) {
	res := Demands(decode(t, `[{"id":"d1","titulo":"x","projeto":{"nome":"P"},"responsaveis":["u1"]}]`), nil, nil, nil, fixedNow)
	require.Len(t, res.Demandas, 1)
	require.NotNil(t, res.Demandas[0].Responsaveis)
	require.Empty(t, res.Demandas[0].Responsaveis)
}

func TestSnapshotEveryDemandReferencesKnownProject(t *testing.T) {
	raw := demanda.RawSnapshot{
		Projetos: decode(t, `[{"id":"p1","nome":"Acolhimento"},{"id":"p2","nome":"Ir na padaria"}]`),
		Usuarios: decode(t, `[{"id":"u1","nome":"Ana","email":"ana@x.com","senha":"1234"}]`),
		Agents:   decode(t, `[{"id":"c1","nome":"Curitiba"}]`),
		Demandas: decode(t, `[
			{"id":"d1","titulo":"a","projeto":{"id":"p1","nome":"Nome antigo"}},
			{"id":"d2","titulo":"b","projeto":{"id":"pz","nome":"Sintetizado"}},
			{"id":"d3","titulo":"c","projeto":{"id":"p2","nome":"Ir na padaria"}},
			{"id":"d4","titulo":"d","projeto":{"id":"pq","nome":"sintetizado"}}
		]`),
	}

	snap := Snapshot(raw, fixedNow)

	ids := map[string]demanda.Projeto{}
	for _, p := range snap.Projetos {
		_, dup := ids[p.ID]
		require.False(t, dup)
		ids[p.ID] = p
	}
	require.Len(t, snap.Projetos, 2)
	require.Len(t, snap.Demandas, 3)
	for _, d := range snap.Demandas {
		canonical, ok := ids[d.Projeto.ID]
		require.True(t, ok, "projeto %s ausente", d.Projeto.ID)
		require.Equal(t, canonical, d.Projeto)
		require.False(t, demanda.ProjetoRemovido(d.Projeto.Nome))
	}
	require.Equal(t, "Acolhimento", snap.Demandas[0].Projeto.Nome)
	require.Equal(t, snap.Demandas[1].Projeto, snap.Demandas[2].Projeto)
}

func TestReconcileAddsOrphanProjects(t *testing.T) {
	projects := []demanda.Projeto{{ID: "p1", Nome: "A"}}
	demandas := []demanda.Demanda{
		{ID: "d1", Projeto: demanda.Projeto{ID: "p1", Nome: "velho"}},
		{ID: "d2", Projeto: demanda.Projeto{ID: "p2", Nome: "B"}},
	}

	merged, out := Reconcile(projects, nil, demandas)
	require.Equal(t, []demanda.Projeto{{ID: "p1", Nome: "A"}, {ID: "p2", Nome: "B"}}, merged)
	require.Equal(t, "A", out[0].Projeto.Nome)
	require.Equal(t, "B", out[1].Projeto.Nome)
}
