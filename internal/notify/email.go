package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/hospital-ops/internal/model"
)

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type EmailSender struct {
	dialer Dialer
	from   string
}

func NewEmailSender(cfg SMTPConfig) *EmailSender {
	return NewEmailSenderWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func NewEmailSenderWithDialer(d Dialer, from string) *EmailSender {
	return &EmailSender{dialer: d, from: from}
}

func (s *EmailSender) Send(ctx context.Context, req model.NotificationRequest) error {
	if req.Recipient == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", req.Recipient)
	m.SetHeader("Subject", req.Subject)
	m.SetBody("text/plain", req.Message)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
