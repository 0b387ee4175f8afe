// Package alert envia avisos operacionais sobre a sincronização.
package alert

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

var ErrNotConfigured = errors.New("alerta: notificador não configurado")

// Notifier envia alertas para canais externos.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

type Message struct {
	Title    string
	Text     string
	Severity string
}

type SlackNotifier struct {
	webhookURL string
	client     *resty.Client
}

// NewSlackNotifier devolve nil quando não há webhook.
func NewSlackNotifier(webhookURL string) *SlackNotifier {
	if webhookURL == "" {
		return nil
	}
	return &SlackNotifier{
		webhookURL: webhookURL,
		client:     resty.New().SetTimeout(5 * time.Second),
	}
}

func (s *SlackNotifier) Notify(ctx context.Context, msg Message) error {
	if s == nil || s.webhookURL == "" {
		return ErrNotConfigured
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{"text": formatSlackMessage(msg)}).
		Post(s.webhookURL)
	if err != nil {
		return fmt.Errorf("alerta slack: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("alerta slack: status %d", resp.StatusCode())
	}
	return nil
}

var severityEmoji = map[string]string{
	SeverityWarning:  ":warning:",
	SeverityCritical: ":rotating_light:",
}

// formatSlackMessage monta "<emoji> *Apadrinha Paraná · título*" seguido do
// texto na linha de baixo.
func formatSlackMessage(msg Message) string {
	emoji, ok := severityEmoji[msg.Severity]
	if !ok {
		emoji = ":information_source:"
	}
	title := "Apadrinha Paraná"
	if msg.Title != "" {
		title += " · " + msg.Title
	}
	return fmt.Sprintf("%s *%s*\n%s", emoji, title, msg.Text)
}

// LogNotifier registra o alerta no log. Serve quando não há Slack.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (l LogNotifier) Notify(_ context.Context, msg Message) error {
	ev := l.Logger.Info()
	switch msg.Severity {
	case SeverityWarning:
		ev = l.Logger.Warn()
	case SeverityCritical:
		ev = l.Logger.Error()
	}
	ev.Str("titulo", msg.Title).Msg(msg.Text)
	return nil
}
