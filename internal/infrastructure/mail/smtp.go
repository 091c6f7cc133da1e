package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"

	appnotification "github.com/t1tandr/uevent/internal/application/notification"
	"github.com/t1tandr/uevent/internal/infrastructure/config"
)

// smtpClient is the part of *gomail.Client the sender uses
type smtpClient interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// SMTPMailer renders templates and delivers them over SMTP
type SMTPMailer struct {
	client   smtpClient
	renderer *Renderer
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSMTPClient builds a go-mail client from the mail settings
func NewSMTPClient(cfg config.MailConfig) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.Port),
	}
	if cfg.TLS {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSMandatory))
	} else {
		opts = append(opts, gomail.WithTLSPortPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}
	return client, nil
}

// NewSMTPMailer creates an SMTP mailer
func NewSMTPMailer(client smtpClient, renderer *Renderer, cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		client:   client,
		renderer: renderer,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// Send renders msg and delivers it
func (m *SMTPMailer) Send(ctx context.Context, msg appnotification.MailMessage) error {
	out, err := m.build(ctx, msg)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("failed to send %s mail: %w", msg.Template, err)
	}
	m.logger.Debug("mail sent",
		zap.String("template", msg.Template),
		zap.String("to", msg.To),
	)
	return nil
}

func (m *SMTPMailer) build(ctx context.Context, msg appnotification.MailMessage) (*gomail.Msg, error) {
	rendered, err := m.renderer.Render(ctx, msg.Template, msg.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s mail: %w", msg.Template, err)
	}

	out := gomail.NewMsg()
	if err := out.FromFormat(m.fromName, m.from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(rendered.Subject)
	out.SetBodyString(gomail.TypeTextHTML, rendered.HTML)

	for _, a := range msg.Attachments {
		opts := []gomail.FileOption{}
		if a.ContentType != "" {
			opts = append(opts, gomail.WithFileContentType(gomail.ContentType(a.ContentType)))
		}
		if err := out.AttachReader(a.Filename, bytes.NewReader(a.Data), opts...); err != nil {
			return nil, fmt.Errorf("failed to attach %s: %w", a.Filename, err)
		}
	}
	return out, nil
}

var _ appnotification.Mailer = (*SMTPMailer)(nil)
