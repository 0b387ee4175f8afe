package http

import (
	"context"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apadrinhaparana/demandas/internal/app"
	"github.com/apadrinhaparana/demandas/internal/auth"
	"github.com/apadrinhaparana/demandas/internal/config"
	httpmiddleware "github.com/apadrinhaparana/demandas/internal/http/middleware"
	"github.com/apadrinhaparana/demandas/internal/route"
	"github.com/apadrinhaparana/demandas/internal/session"
)

// Pinger é uma dependência verificada por /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps reúne o que o roteador precisa além da configuração.
type Deps struct {
	Controller *app.Controller
	JWT        *auth.JWTManager
	Sessions   session.Store
	Pingers    map[string]Pinger
	Now        func() time.Time
}

type Handler struct {
	cfg           *config.Config
	ctrl          *app.Controller
	jwt           *auth.JWTManager
	sessions      session.Store
	pingers       map[string]Pinger
	now           func() time.Time
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter

	navMu      sync.Mutex
	navigators map[string]*route.Navigator
}

// NewRouter devolve o roteador configurado. Com BASE_PATH diferente de / as
// rotas ficam montadas sob esse prefixo.
func NewRouter(cfg *config.Config, deps Deps) (http.Handler, error) {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	h := &Handler{
		cfg:           cfg,
		ctrl:          deps.Controller,
		jwt:           deps.JWT,
		sessions:      deps.Sessions,
		pingers:       deps.Pingers,
		now:           deps.Now,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		navigators:    make(map[string]*route.Navigator),
	}

	api := chi.NewRouter()
	api.Use(chimiddleware.RequestID)
	api.Use(chimiddleware.RealIP)
	api.Use(httpmiddleware.Logging)
	api.Use(httpmiddleware.Recover)
	api.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	api.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
		public.Get("/api/estado", h.Estado)

		public.Group(func(ready chi.Router) {
			ready.Use(h.requireReady)
			ready.Post("/api/auth/login", h.Login)
			ready.Post("/api/auth/registro", h.Registro)
		})
	})

	api.Group(func(private chi.Router) {
		private.Use(h.requireReady)
		private.Use(httpmiddleware.Auth(h.jwt, h.sessions))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/api/sessao", h.Sessao)
		private.Post("/api/auth/logout", h.Logout)
		private.Get("/api/snapshot", h.Snapshot)
		private.Delete("/api/aviso", h.FecharAviso)

		private.Route("/api/demandas", func(d chi.Router) {
			d.Get("/", h.ListDemandas)
			d.Post("/", h.CreateDemanda)
			d.Get("/resumo", h.ResumoDemandas)
			d.Get("/antigas", h.DemandasAntigas)
			d.Get("/exportar", h.ExportDemandas)
			d.Get("/{id}", h.GetDemanda)
			d.Patch("/{id}", h.UpdateDemanda)
			d.Delete("/{id}", h.DeleteDemanda)
			d.Post("/{id}/finalizada", h.ToggleFinalizada)
			d.Post("/{id}/comentarios", h.AddComentario)
			d.Delete("/{id}/comentarios/{comentarioID}", h.DeleteComentario)
		})

		private.Get("/api/projetos", h.ListProjetos)
		private.Post("/api/projetos", h.CreateProjeto)
		private.Get("/api/responsaveis", h.ListResponsaveis)

		private.Route("/api/cidades", func(c chi.Router) {
			c.Get("/", h.ListCidades)
			c.Post("/", h.CreateCidade)
			c.Post("/adicionar", h.AdicionarCidade)
			c.Patch("/{id}", h.UpdateCidade)
			c.Delete("/{id}", h.DeleteCidade)
			c.Post("/{id}/ativo", h.ToggleCidadeAtiva)
		})

		private.Route("/api/aba", func(a chi.Router) {
			a.Get("/", h.GetAba)
			a.Put("/", h.PutAba)
			a.Post("/voltar", h.VoltarAba)
			a.Post("/avancar", h.AvancarAba)
		})
	})

	if dir := strings.TrimSpace(cfg.StaticDir); dir != "" {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
		api.Handle("/*", staticHandler(dir))
	}

	base := strings.TrimRight(cfg.BasePath, "/")
	if base == "" {
		return api, nil
	}
	root := chi.NewRouter()
	root.Use(redirectBase(base))
	root.Get("/health", h.Health)
	root.Mount(base, api)
	return root, nil
}

// redirectBase leva /base para /base/, onde o front-end resolve caminhos
// relativos.
func redirectBase(base string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == base {
				target := base + "/"
				if r.URL.RawQuery != "" {
					target += "?" + r.URL.RawQuery
				}
				http.Redirect(w, r, target, http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// staticHandler serve o front-end; caminhos desconhecidos caem no
// index.html para o roteamento por fragmento funcionar.
func staticHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := chi.URLParam(r, "*")
		if path != "" {
			if info, err := http.Dir(dir).Open("/" + path); err == nil {
				stat, statErr := info.Stat()
				_ = info.Close()
				if statErr == nil && !stat.IsDir() {
					r2 := r.Clone(r.Context())
					r2.URL.Path = "/" + path
					files.ServeHTTP(w, r2)
					return
				}
			}
		}
		http.ServeFile(w, r, dir+"/index.html")
	})
}

// requireReady barra a API enquanto os dados não carregaram ou depois de
// falha fatal na inicialização.
func (h *Handler) requireReady(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		estado := h.ctrl.Estado()
		switch estado.Fase {
		case app.FasePronto:
			next.ServeHTTP(w, r)
		case app.FaseFatal:
			WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", estado.Mensagem, map[string]any{"fase": estado.Fase})
		default:
			w.Header().Set("Retry-After", "1")
			WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", app.MensagemIndisponivel, map[string]any{"fase": estado.Fase})
		}
	})
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida as dependências configuradas e a fase de inicialização.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	failures := map[string]any{}
	for name, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if fase := h.ctrl.Estado().Fase; fase != app.FasePronto {
		failures["fase"] = fase
	}

	if len(failures) > 0 {
		WriteError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "dependências indisponíveis", failures)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}
