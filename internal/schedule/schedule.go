// Package schedule agenda tarefas adiadas por chave; um novo agendamento
// substitui o pendente da mesma chave.
package schedule

import (
	"sync"
	"time"
)

// Scheduler é o contrato usado pelo controlador.
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string)
	Pending(key string) bool
}

type task struct {
	timer *time.Timer
}

// Debouncer implementa Scheduler sobre time.AfterFunc.
type Debouncer struct {
	mu      sync.Mutex
	tasks   map[string]*task
	wg      sync.WaitGroup
	stopped bool
}

func NewDebouncer() *Debouncer {
	return &Debouncer{tasks: make(map[string]*task)}
}

// Schedule cancela a tarefa pendente da chave e agenda fn após delay.
// Depois de Stop não agenda mais nada.
func (d *Debouncer) Schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.cancelLocked(key)

	t := &task{}
	d.wg.Add(1)
	t.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		current := d.tasks[key] == t
		if current {
			delete(d.tasks, key)
		}
		d.mu.Unlock()
		defer d.wg.Done()
		if current {
			fn()
		}
	})
	d.tasks[key] = t
}

// Cancel descarta a tarefa pendente da chave, se houver.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked(key)
}

// Pending informa se há tarefa aguardando para a chave.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.tasks[key]
	return ok
}

func (d *Debouncer) cancelLocked(key string) {
	t, ok := d.tasks[key]
	if !ok {
		return
	}
	delete(d.tasks, key)
	if t.timer.Stop() {
		d.wg.Done()
	}
}

// Stop cancela todas as tarefas pendentes e espera as que já estão rodando.
// Não deve ser chamado de dentro de uma tarefa.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key := range d.tasks {
		d.cancelLocked(key)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// Manual guarda as tarefas até Run ser chamado. Usado em testes para
// controlar o tempo.
type Manual struct {
	mu     sync.Mutex
	tasks  map[string]func()
	delays map[string]time.Duration
	count  map[string]int
}

func NewManual() *Manual {
	return &Manual{
		tasks:  make(map[string]func()),
		delays: make(map[string]time.Duration),
		count:  make(map[string]int),
	}
}

func (m *Manual) Schedule(key string, delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[key] = fn
	m.delays[key] = delay
	m.count[key]++
}

func (m *Manual) Cancel(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, key)
	delete(m.delays, key)
}

// Pending informa se há tarefa aguardando para a chave.
func (m *Manual) Pending(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.tasks[key]
	return ok
}

// Delay devolve o atraso pedido no último agendamento pendente da chave.
func (m *Manual) Delay(key string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.delays[key]
}

// Scheduled conta quantas vezes a chave foi agendada.
func (m *Manual) Scheduled(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count[key]
}

// Run executa a tarefa pendente da chave e informa se havia uma.
func (m *Manual) Run(key string) bool {
	m.mu.Lock()
	fn, ok := m.tasks[key]
	delete(m.tasks, key)
	delete(m.delays, key)
	m.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}
