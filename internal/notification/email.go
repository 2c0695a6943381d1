package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"NetSentra/internal/config"
	"NetSentra/internal/model"
)

// EmailNotifier delivers alert notifications over SMTP. The body is expected
// to be HTML, which is what the bridge renders.
type EmailNotifier struct {
	cfg  config.SMTPConfig
	auth smtp.Auth
}

// NewEmailNotifier builds a notifier for the configured SMTP account.
func NewEmailNotifier(cfg config.SMTPConfig) model.Notifier {
	return &EmailNotifier{
		cfg:  cfg,
		auth: smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host),
	}
}

// Send mails the rendered alert to every configured recipient.
func (n *EmailNotifier) Send(subject, body string) error {
	headers := []string{
		"To: " + n.cfg.To,
		"From: " + n.cfg.From,
		"Subject: " + subject,
		"Content-Type: text/html; charset=UTF-8",
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	recipients := strings.Split(n.cfg.To, ",")
	if err := smtp.SendMail(addr, n.auth, n.cfg.From, recipients, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
