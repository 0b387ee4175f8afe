// Package connectivity expõe o estado online/offline como capacidade
// injetável, com um monitor que sonda o armazenamento remoto.
package connectivity

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Checker informa se a rede está disponível.
type Checker interface {
	Online() bool
}

// Listener recebe transições de conectividade.
type Listener func(online bool)

// Static é um Checker controlado manualmente.
type Static struct {
	online    atomic.Bool
	mu        sync.Mutex
	listeners []Listener
}

// NewStatic cria o checker no estado informado.
func NewStatic(online bool) *Static {
	s := &Static{}
	s.online.Store(online)
	return s
}

func (s *Static) Online() bool {
	return s.online.Load()
}

// Subscribe registra um listener para transições.
func (s *Static) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Set altera o estado e notifica listeners apenas quando há transição.
func (s *Static) Set(online bool) {
	if s.online.Swap(online) == online {
		return
	}
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range listeners {
		l(online)
	}
}

// Pinger é implementado por clientes que conseguem testar o remoto.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor sonda um Pinger periodicamente e mantém o estado em um Static.
type Monitor struct {
	*Static
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMonitor cria o monitor; começa otimista (online) até a primeira sonda.
func NewMonitor(pinger Pinger, interval time.Duration, logger zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	timeout := interval / 2
	if timeout > 5*time.Second {
		timeout = 5 * time.Second
	}
	return &Monitor{
		Static:   NewStatic(true),
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start inicia o loop de sondagem. Seguro para chamar múltiplas vezes.
func (m *Monitor) Start(parent context.Context) {
	m.once.Do(func() {
		ctx, cancel := context.WithCancel(parent)
		m.cancel = cancel
		go m.runLoop(ctx)
	})
}

// Stop encerra o loop e aguarda a goroutine terminar.
func (m *Monitor) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
}

func (m *Monitor) runLoop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(probeCtx)
	if ctx.Err() != nil {
		return
	}
	online := err == nil
	if online != m.Online() {
		if online {
			m.logger.Info().Msg("conectividade: online")
		} else {
			m.logger.Warn().Err(err).Msg("conectividade: offline")
		}
	}
	m.Set(online)
}
