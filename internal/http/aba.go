package http

import (
	"net/http"

	httpmiddleware "github.com/apadrinhaparana/demandas/internal/http/middleware"
	"github.com/apadrinhaparana/demandas/internal/route"
)

type abaResponse struct {
	Aba  route.Aba `json:"aba"`
	Path string    `json:"path"`
}

func abaView(aba route.Aba) abaResponse {
	return abaResponse{Aba: aba, Path: route.Path(aba)}
}

// navigator devolve o histórico de abas da sessão. Na primeira consulta a
// aba inicial vem de ?hash= e ?path=.
func (h *Handler) navigator(r *http.Request) *route.Navigator {
	sessionID := httpmiddleware.GetSession(r.Context())
	h.navMu.Lock()
	defer h.navMu.Unlock()
	nav, ok := h.navigators[sessionID]
	if !ok {
		q := r.URL.Query()
		nav = route.NewNavigator(route.FromLocation(q.Get("hash"), q.Get("path")))
		h.navigators[sessionID] = nav
	}
	return nav
}

func (h *Handler) dropNavigator(sessionID string) {
	h.navMu.Lock()
	defer h.navMu.Unlock()
	delete(h.navigators, sessionID)
}

func (h *Handler) GetAba(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, abaView(h.navigator(r).Atual()))
}

// PutAba navega para {"aba": ...} ou, com {"hash","path"}, sincroniza com
// uma mudança de endereço feita pelo navegador. "substituir" troca a entrada
// atual sem criar histórico.
func (h *Handler) PutAba(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Aba        string  `json:"aba"`
		Hash       *string `json:"hash"`
		Path       *string `json:"path"`
		Substituir bool    `json:"substituir"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	nav := h.navigator(r)

	if payload.Aba == "" && (payload.Hash != nil || payload.Path != nil) {
		var hash, path string
		if payload.Hash != nil {
			hash = *payload.Hash
		}
		if payload.Path != nil {
			path = *payload.Path
		}
		WriteJSON(w, http.StatusOK, abaView(nav.Sync(hash, path)))
		return
	}

	aba, ok := route.Parse(payload.Aba)
	if !ok {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "aba inválida", nil)
		return
	}
	if payload.Substituir {
		WriteJSON(w, http.StatusOK, abaView(nav.Replace(aba)))
		return
	}
	WriteJSON(w, http.StatusOK, abaView(nav.Navigate(aba)))
}

func (h *Handler) VoltarAba(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, abaView(h.navigator(r).Back()))
}

func (h *Handler) AvancarAba(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, abaView(h.navigator(r).Forward()))
}
