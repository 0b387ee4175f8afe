package schedule

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condição não atingida a tempo")
}

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer()
	defer d.Stop()

	var calls, last atomic.Int32
	for i := int32(1); i <= 5; i++ {
		v := i
		d.Schedule("nuvem", 30*time.Millisecond, func() {
			calls.Add(1)
			last.Store(v)
		})
	}

	waitFor(t, func() bool { return calls.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("esperava 1 execução, obteve %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("esperava a última tarefa (5), obteve %d", got)
	}
	if d.Pending("nuvem") {
		t.Fatal("não deveria haver tarefa pendente")
	}
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer()
	defer d.Stop()

	var a, b atomic.Int32
	d.Schedule("a", 10*time.Millisecond, func() { a.Add(1) })
	d.Schedule("b", 10*time.Millisecond, func() { b.Add(1) })

	waitFor(t, func() bool { return a.Load() == 1 && b.Load() == 1 })
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer()
	defer d.Stop()

	var calls atomic.Int32
	d.Schedule("nuvem", 20*time.Millisecond, func() { calls.Add(1) })
	d.Cancel("nuvem")
	d.Cancel("inexistente")

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("tarefa cancelada não deveria rodar")
	}
}

func TestDebouncerStopCancelsPendingAndRejectsNew(t *testing.T) {
	d := NewDebouncer()

	var calls atomic.Int32
	d.Schedule("nuvem", time.Hour, func() { calls.Add(1) })
	d.Stop()
	d.Schedule("nuvem", time.Millisecond, func() { calls.Add(1) })

	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatal("nenhuma tarefa deveria rodar após Stop")
	}
}

func TestDebouncerStopWaitsRunningTask(t *testing.T) {
	d := NewDebouncer()

	started := make(chan struct{})
	var finished atomic.Bool
	d.Schedule("nuvem", time.Millisecond, func() {
		close(started)
		time.Sleep(30 * time.Millisecond)
		finished.Store(true)
	})
	<-started
	d.Stop()
	if !finished.Load() {
		t.Fatal("Stop deveria aguardar a tarefa em execução")
	}
}

func TestManual(t *testing.T) {
	m := NewManual()
	var calls int
	m.Schedule("nuvem", time.Second, func() { calls = 1 })
	m.Schedule("nuvem", 2*time.Second, func() { calls = 2 })

	if m.Scheduled("nuvem") != 2 || m.Delay("nuvem") != 2*time.Second {
		t.Fatalf("registro inesperado: %d %v", m.Scheduled("nuvem"), m.Delay("nuvem"))
	}
	if !m.Run("nuvem") || calls != 2 {
		t.Fatalf("esperava executar a última tarefa, calls=%d", calls)
	}
	if m.Run("nuvem") {
		t.Fatal("não deveria haver tarefa após Run")
	}
}
