package worker

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"

	"github.com/pharma-academy/backend/config"
	"github.com/pharma-academy/backend/pkg/queue"
)

// Mailer delivers one transactional email.
type Mailer interface {
	Send(ctx context.Context, payload queue.EmailPayload) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	cfg config.EmailConfig
}

// NewSMTPMailer creates an SMTP mailer.
func NewSMTPMailer(cfg config.EmailConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// Send delivers the email via SMTP.
func (m *SMTPMailer) Send(ctx context.Context, payload queue.EmailPayload) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("smtp host not configured")
	}
	addr := m.cfg.SMTPHost + ":" + strconv.Itoa(m.cfg.SMTPPort)
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s",
		m.cfg.FromName, m.cfg.FromAddress, payload.To, payload.Subject, payload.BodyText)

	if err := smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{payload.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
