package email

import (
	"context"
	"fmt"

	portsclients "github.com/contactkeeper/contacts_backend/internal/core/ports/clients"
	"github.com/contactkeeper/contacts_backend/internal/platform/config"
	gomail "gopkg.in/gomail.v2"
)

// SMTPMailer sends the account confirmation email over SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg *config.Config) portsclients.Mailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:   cfg.SMTPFrom,
	}
}

var _ portsclients.Mailer = (*SMTPMailer)(nil)

func (m *SMTPMailer) SendConfirmationEmail(ctx context.Context, to string, username string, confirmURL string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Confirm your email")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome! Please confirm your email address by clicking the link below:</p><p><a href="%s">Confirm email</a></p>`,
		username, confirmURL,
	))

	// gomail has no context support; honor cancellation before dialing.
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}
