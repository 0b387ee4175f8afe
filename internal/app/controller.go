// Package app concentra o estado do aplicativo: coleções em memória, fase de
// inicialização, status de sincronização e as mutações que os alteram.
package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/apadrinhaparana/demandas/internal/alert"
	"github.com/apadrinhaparana/demandas/internal/cloud"
	"github.com/apadrinhaparana/demandas/internal/connectivity"
	"github.com/apadrinhaparana/demandas/internal/demanda"
	"github.com/apadrinhaparana/demandas/internal/localstore"
	"github.com/apadrinhaparana/demandas/internal/normalize"
	"github.com/apadrinhaparana/demandas/internal/schedule"
)

// Fase da inicialização.
type Fase string

const (
	FaseCarregando Fase = "carregando"
	FasePronto     Fase = "pronto"
	FaseFatal      Fase = "fatal"
)

// StatusSync é o indicador de sincronização exibido ao usuário.
type StatusSync string

const (
	StatusSincronizado  StatusSync = "sincronizado"
	StatusSincronizando StatusSync = "sincronizando"
	StatusOffline       StatusSync = "offline"
	StatusErro          StatusSync = "erro"
)

const (
	DefaultDebounce   = 650 * time.Millisecond
	DefaultBannerTTL  = 3 * time.Second
	DefaultDiasAntiga = 14

	MensagemNuvemNaoConfigurada = "Sincronização com a nuvem não configurada"
	MensagemDemandaCriada       = "Demanda criada com sucesso."

	chaveNuvem  = "nuvem"
	chaveAviso  = "aviso"
	pushTimeout = 20 * time.Second
)

// Cloud é o espelho remoto do snapshot.
type Cloud interface {
	Enabled() bool
	LoadSnapshot(ctx context.Context) (demanda.RawSnapshot, error)
	SaveSnapshot(ctx context.Context, snap demanda.Snapshot) cloud.SaveResult
	SaveUsuarios(ctx context.Context, usuarios []demanda.Usuario) cloud.SaveResult
}

// LocalStore é o armazenamento local das coleções.
type LocalStore interface {
	Load(ctx context.Context, key string) []any
	LoadDemandas(ctx context.Context) []any
	Save(ctx context.Context, key string, value any) error
}

type Options struct {
	Cloud         Cloud
	Local         LocalStore
	Checker       connectivity.Checker
	Scheduler     schedule.Scheduler
	Notifier      alert.Notifier
	Logger        zerolog.Logger
	Now           func() time.Time
	CloudRequired bool
	Debounce      time.Duration
	BannerTTL     time.Duration
}

// Estado resume a fase e a sincronização para a interface.
type Estado struct {
	Fase       Fase       `json:"fase"`
	Mensagem   string     `json:"mensagem,omitempty"`
	Sync       StatusSync `json:"sync"`
	Aviso      string     `json:"aviso,omitempty"`
	NuvemAtiva bool       `json:"nuvemAtiva"`
}

// Controller serializa todo acesso ao estado com um mutex; handlers HTTP o
// chamam de várias goroutines.
type Controller struct {
	cloud         Cloud
	local         LocalStore
	checker       connectivity.Checker
	scheduler     schedule.Scheduler
	notifier      alert.Notifier
	logger        zerolog.Logger
	now           func() time.Time
	cloudRequired bool
	debounce      time.Duration
	bannerTTL     time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu               sync.Mutex
	fase             Fase
	mensagem         string
	status           StatusSync
	aviso            string
	alertouPermissao bool
	closed           bool
	emailsReservados map[string]struct{}

	projetos []demanda.Projeto
	demandas []demanda.Demanda
	agents   []demanda.Agent
	usuarios []demanda.Usuario
}

func New(opts Options) *Controller {
	if opts.Local == nil {
		opts.Local = localstore.New(localstore.NewMemoryBackend(), opts.Logger)
	}
	if opts.Scheduler == nil {
		opts.Scheduler = schedule.NewDebouncer()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.BannerTTL <= 0 {
		opts.BannerTTL = DefaultBannerTTL
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		cloud:         opts.Cloud,
		local:         opts.Local,
		checker:       opts.Checker,
		scheduler:     opts.Scheduler,
		notifier:      opts.Notifier,
		logger:        opts.Logger.With().Str("component", "app").Logger(),
		now:           opts.Now,
		cloudRequired: opts.CloudRequired,
		debounce:      opts.Debounce,
		bannerTTL:     opts.BannerTTL,
		ctx:           ctx,
		cancel:        cancel,
		fase:          FaseCarregando,
		status:        StatusSincronizado,
		projetos:      []demanda.Projeto{},
		demandas:      []demanda.Demanda{},
		agents:        []demanda.Agent{},
		usuarios:      []demanda.Usuario{},

		emailsReservados: make(map[string]struct{}),
	}
}

func (c *Controller) cloudEnabled() bool {
	return c.cloud != nil && c.cloud.Enabled()
}

// Init carrega o estado inicial. Termina sempre fora de "carregando", exceto
// quando Close roda antes do fim da carga; nesse caso o resultado é
// descartado.
func (c *Controller) Init(ctx context.Context) error {
	if !c.cloudEnabled() {
		if c.cloudRequired {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.fase = FaseFatal
			c.mensagem = MensagemNuvemNaoConfigurada
			c.logger.Error().Msg("nuvem não configurada e obrigatória")
			return ErrNuvemNaoConfigurada
		}
		raw := demanda.RawSnapshot{
			Projetos: c.local.Load(ctx, localstore.KeyProjetos),
			Demandas: c.local.LoadDemandas(ctx),
			Agents:   c.local.Load(ctx, localstore.KeyAgents),
			Usuarios: c.local.Load(ctx, localstore.KeyUsuarios),
		}
		return c.populate(ctx, normalize.Snapshot(raw, c.now()), "local")
	}

	raw, err := c.cloud.LoadSnapshot(ctx)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed {
			return ErrEncerrado
		}
		c.fase = FaseFatal
		c.mensagem = err.Error()
		c.logger.Error().Err(err).Msg("falha ao carregar dados da nuvem")
		return err
	}
	return c.populate(ctx, normalize.Snapshot(raw, c.now()), "nuvem")
}

func (c *Controller) populate(ctx context.Context, snap demanda.Snapshot, origem string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrEncerrado
	}
	c.projetos = snap.Projetos
	c.demandas = snap.Demandas
	c.agents = snap.Agents
	c.usuarios = snap.Usuarios
	c.fase = FasePronto
	c.mensagem = ""
	c.status = StatusSincronizado
	if c.cloudEnabled() && c.checker != nil && !c.checker.Online() {
		c.status = StatusOffline
	}
	c.persistLocked(ctx, localstore.KeyProjetos, localstore.KeyDemandas, localstore.KeyAgents, localstore.KeyUsuarios)
	c.logger.Info().
		Str("origem", origem).
		Int("projetos", len(c.projetos)).
		Int("demandas", len(c.demandas)).
		Int("cidades", len(c.agents)).
		Int("usuarios", len(c.usuarios)).
		Msg("estado inicial carregado")
	return nil
}

// Close descarta tarefas pendentes e impede que resultados atrasados sejam
// aplicados.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.scheduler.Cancel(chaveNuvem)
	c.scheduler.Cancel(chaveAviso)
	c.cancel()
}

func (c *Controller) Estado() Estado {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Estado{
		Fase:       c.fase,
		Mensagem:   c.mensagem,
		Sync:       c.status,
		Aviso:      c.aviso,
		NuvemAtiva: c.cloudEnabled(),
	}
}

// Snapshot devolve cópias das quatro coleções.
func (c *Controller) Snapshot() demanda.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() demanda.Snapshot {
	return demanda.Snapshot{
		Projetos: append([]demanda.Projeto{}, c.projetos...),
		Demandas: append([]demanda.Demanda{}, c.demandas...),
		Agents:   append([]demanda.Agent{}, c.agents...),
		Usuarios: append([]demanda.Usuario{}, c.usuarios...),
	}
}

func (c *Controller) requirePronto() error {
	if c.closed {
		return ErrEncerrado
	}
	if c.fase != FasePronto {
		return ErrNaoPronto
	}
	return nil
}

// persistLocked grava as coleções indicadas no armazenamento local. Falhas
// são registradas e não interrompem a mutação.
func (c *Controller) persistLocked(ctx context.Context, keys ...string) {
	for _, key := range keys {
		var value any
		switch key {
		case localstore.KeyProjetos:
			value = c.projetos
		case localstore.KeyDemandas:
			value = c.demandas
		case localstore.KeyAgents:
			value = c.agents
		case localstore.KeyUsuarios:
			value = c.usuarios
		default:
			continue
		}
		if err := c.local.Save(ctx, key, value); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("falha ao salvar localmente")
		}
	}
}

// changedLocked é chamado após toda mutação: persiste localmente e agenda o
// envio para a nuvem.
func (c *Controller) changedLocked(ctx context.Context, keys ...string) {
	c.persistLocked(ctx, keys...)
	c.scheduleSyncLocked()
}

func (c *Controller) mostrarAvisoLocked(msg string) {
	c.aviso = msg
	c.scheduler.Schedule(chaveAviso, c.bannerTTL, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.aviso == msg {
			c.aviso = ""
		}
	})
}

// FecharAviso remove o aviso antes do prazo.
func (c *Controller) FecharAviso() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aviso = ""
	c.scheduler.Cancel(chaveAviso)
}
