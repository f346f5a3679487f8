package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/logger"
)

// Message is an outbound email.
type Message struct {
	To      []string
	Cc      []string
	Subject string
	Body    string // HTML
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers mail over SMTP via gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender creates a sender from the SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	from := cfg.FromAddress
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromAddress)
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("message has no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) > 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		logger.L(ctx).Error("failed to send email",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	logger.L(ctx).Info("email sent",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NoopSender is used when SMTP is disabled. It logs the message instead
// of delivering it so local environments still show what would go out.
type NoopSender struct{}

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

func (s *NoopSender) Send(ctx context.Context, msg Message) error {
	logger.L(ctx).Info("smtp disabled, dropping email",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NewSender returns an SMTP sender when enabled, otherwise a no-op sender.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled {
		return NewNoopSender()
	}
	return NewSMTPSender(cfg)
}

var (
	_ Sender = (*SMTPSender)(nil)
	_ Sender = (*NoopSender)(nil)
)
