package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appnotification "github.com/t1tandr/uevent/internal/application/notification"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

// LogMailer renders mail and writes it to the log instead of sending it.
// It is used when no SMTP host is configured.
type LogMailer struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewLogMailer creates a logging mailer
func NewLogMailer(renderer *Renderer, logger *zap.Logger) *LogMailer {
	return &LogMailer{renderer: renderer, logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, msg appnotification.MailMessage) error {
	rendered, err := m.renderer.Render(ctx, msg.Template, msg.Data)
	if err != nil {
		return fmt.Errorf("failed to render %s mail: %w", msg.Template, err)
	}

	attachments := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		attachments[i] = a.Filename
	}
	m.logger.Info("mail not sent, smtp disabled",
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
		zap.String("subject", rendered.Subject),
		zap.Strings("attachments", attachments),
	)
	return nil
}

// NewMailer picks the SMTP mailer when a host is configured and the
// logging mailer otherwise
func NewMailer(cfg config.MailConfig, frontendURL string, logger *zap.Logger) (appnotification.Mailer, error) {
	renderer := NewRenderer(frontendURL)
	if cfg.Host == "" {
		logger.Warn("mail host not configured, mails will only be logged")
		return NewLogMailer(renderer, logger), nil
	}
	client, err := NewSMTPClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewSMTPMailer(client, renderer, cfg, logger), nil
}

var _ appnotification.Mailer = (*LogMailer)(nil)
