// Package mailer manda el resumen diario por SMTP con STARTTLS.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"eps-tracker/internal/platform/config"
)

type Mailer struct {
	cfg config.SMTPConfig
}

func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// SendSummary manda el cuerpo en texto plano a todos los destinatarios.
func (m *Mailer) SendSummary(ctx context.Context, subject, body string) error {
	if !m.cfg.Enabled() {
		return fmt.Errorf("smtp not configured")
	}
	if len(m.cfg.Recipients) == 0 {
		return fmt.Errorf("no recipients configured")
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.Sender,
		"To: " + strings.Join(m.cfg.Recipients, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.Sender, m.cfg.Password, m.cfg.Host)

	// smtp.SendMail negocia STARTTLS solo cuando el servidor lo anuncia;
	// respetamos el deadline del contexto cortando antes si ya venció
	if err := ctx.Err(); err != nil {
		return err
	}
	return smtp.SendMail(addr, auth, m.cfg.Sender, m.cfg.Recipients, []byte(msg))
}
