package route

import "testing"

func TestFromLocation(t *testing.T) {
	cases := []struct {
		hash, path string
		want       Aba
	}{
		{"", "/", AbaDemandas},
		{"#/", "/", AbaDemandas},
		{"#/agents", "/", AbaAgentes},
		{"#/Agentes/", "/", AbaAgentes},
		{"#/agents//", "/", AbaAgentes},
		{"#/outra", "/", AbaDemandas},
		{"#agents", "/", AbaAgentes},
		{"agentes", "/", AbaAgentes},
		{"#outra", "/", AbaDemandas},
		{"", "/agents", AbaAgentes},
		{"", "/apadrinha/agentes/", AbaAgentes},
		{"", "/apadrinha/", AbaDemandas},
		{"", "/agentsx", AbaDemandas},
	}
	for _, tc := range cases {
		if got := FromLocation(tc.hash, tc.path); got != tc.want {
			t.Errorf("FromLocation(%q, %q) = %q, esperado %q", tc.hash, tc.path, got, tc.want)
		}
	}
}

func TestPath(t *testing.T) {
	if Path(AbaAgentes) != "#/agents" || Path(AbaDemandas) != "#/" {
		t.Fatalf("caminhos inesperados: %q %q", Path(AbaAgentes), Path(AbaDemandas))
	}
	if FromLocation(Path(AbaAgentes), "/") != AbaAgentes {
		t.Fatal("Path e FromLocation deveriam concordar")
	}
}

func TestParse(t *testing.T) {
	if a, ok := Parse("Agents"); !ok || a != AbaAgentes {
		t.Fatalf("Parse(Agents) = %q %v", a, ok)
	}
	if _, ok := Parse("config"); ok {
		t.Fatal("aba desconhecida não deveria ser aceita")
	}
}

func TestNavigatorHistory(t *testing.T) {
	n := NewNavigator("")
	if n.Atual() != AbaDemandas {
		t.Fatalf("aba inicial inesperada: %q", n.Atual())
	}

	n.Navigate(AbaAgentes)
	n.Navigate(AbaAgentes)
	if got := n.Back(); got != AbaDemandas {
		t.Fatalf("Back = %q", got)
	}
	if got := n.Back(); got != AbaDemandas {
		t.Fatalf("Back no início deveria permanecer, obteve %q", got)
	}
	if got := n.Forward(); got != AbaAgentes {
		t.Fatalf("Forward = %q", got)
	}
	if got := n.Forward(); got != AbaAgentes {
		t.Fatalf("Forward no fim deveria permanecer, obteve %q", got)
	}

	n.Back()
	n.Replace(AbaAgentes)
	if got := n.Forward(); got != AbaAgentes {
		t.Fatalf("Forward após Replace = %q", got)
	}

	n.Back()
	n.Sync("#/", "/")
	n.Navigate(AbaAgentes)
	if got := n.Forward(); got != AbaAgentes {
		t.Fatalf("Navigate deveria descartar o histórico à frente, obteve %q", got)
	}
}
