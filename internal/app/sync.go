package app

import (
	"context"

	"github.com/apadrinhaparana/demandas/internal/alert"
	"github.com/apadrinhaparana/demandas/internal/cloud"
)

// scheduleSyncLocked agenda o envio do snapshot completo. Agendamentos
// seguidos dentro da janela de debounce viram um único envio.
func (c *Controller) scheduleSyncLocked() {
	if c.closed || !c.cloudEnabled() || c.fase != FasePronto {
		return
	}
	if c.checker != nil && !c.checker.Online() {
		c.status = StatusOffline
		return
	}
	c.status = StatusSincronizando
	c.scheduler.Schedule(chaveNuvem, c.debounce, c.push)
}

func (c *Controller) push() {
	c.Sincronizar(c.ctx)
}

// Sincronizar cancela o envio agendado e envia o snapshot imediatamente.
func (c *Controller) Sincronizar(ctx context.Context) cloud.SaveResult {
	c.mu.Lock()
	c.scheduler.Cancel(chaveNuvem)
	if enabled := c.cloudEnabled(); c.closed || !enabled || c.fase != FasePronto {
		c.mu.Unlock()
		return cloud.SaveResult{Sucesso: !enabled}
	}
	c.status = StatusSincronizando
	snap := c.snapshotLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, pushTimeout)
	defer cancel()
	res := c.cloud.SaveSnapshot(ctx, snap)

	c.mu.Lock()
	alertar := false
	if !c.closed {
		alertar = c.applyResultLocked(res)
		// Uma mutação durante o envio já agendou outro; o snapshot enviado
		// ficou desatualizado.
		if c.scheduler.Pending(chaveNuvem) {
			c.status = StatusSincronizando
		}
	}
	c.mu.Unlock()

	if alertar {
		c.notify(alert.Message{
			Title:    "Sincronização sem permissão",
			Text:     "O armazenamento remoto recusou a gravação; os dados seguem apenas no armazenamento local.",
			Severity: alert.SeverityWarning,
		})
	}
	return res
}

// Flush envia já um envio ainda agendado. Sem pendência não fala com a
// nuvem e devolve enviado=false.
func (c *Controller) Flush(ctx context.Context) (res cloud.SaveResult, enviado bool) {
	c.mu.Lock()
	pendente := !c.closed && (c.scheduler.Pending(chaveNuvem) || c.status == StatusSincronizando)
	c.mu.Unlock()
	if !pendente {
		return cloud.SaveResult{Sucesso: true}, false
	}
	return c.Sincronizar(ctx), true
}

// applyResultLocked traduz o resultado do envio em status. Sem permissão o
// aplicativo segue em modo local e o alerta é emitido uma única vez.
func (c *Controller) applyResultLocked(res cloud.SaveResult) (alertar bool) {
	switch {
	case res.Sucesso:
		c.status = StatusSincronizado
	case res.Offline:
		c.status = StatusOffline
	case res.SemPermissao:
		c.status = StatusSincronizado
		if !c.alertouPermissao {
			c.alertouPermissao = true
			c.logger.Warn().Err(res.Err).Msg("nuvem sem permissão; operando apenas localmente")
			return true
		}
	default:
		c.status = StatusErro
		c.logger.Error().Err(res.Err).Msg("falha ao salvar dados na nuvem")
	}
	return false
}

func (c *Controller) notify(msg alert.Message) {
	if c.notifier == nil {
		return
	}
	if err := c.notifier.Notify(c.ctx, msg); err != nil {
		c.logger.Warn().Err(err).Msg("falha ao enviar alerta")
	}
}

// HandleConnectivity recebe transições de rede. Ao voltar online, agenda um
// envio para recuperar alterações feitas offline.
func (c *Controller) HandleConnectivity(online bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if !online {
		c.status = StatusOffline
		return
	}
	c.status = StatusSincronizado
	c.scheduleSyncLocked()
}
