// Package mailer delivers plain-text e-mail.
package mailer

import (
	"context"
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"
)

type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPConfig describes the outgoing mail server.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPMailer struct {
	from   string
	send   func(...*gomail.Message) error
	logger *slog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) *SMTPMailer {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	return &SMTPMailer{from: cfg.From, send: dialer.DialAndSend, logger: logger}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.send(newMessage(m.from, to, subject, body)); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	m.logger.Debug("mail sent", "to", to, "subject", subject)
	return nil
}

func newMessage(from, to, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}

// Nop discards every message. It is the mailer when no SMTP host is configured.
type Nop struct{}

func (Nop) Send(context.Context, string, string, string) error { return nil }
