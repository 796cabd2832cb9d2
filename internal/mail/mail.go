// Package mail delivers password reset emails.
package mail

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/domodwyer/mailyak/v3"

	"github.com/Shivanand-hulikatti/guestlist/internal/config"
)

const resetSubject = "Reset your guest list password"

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
}

// NewSMTPMailer builds a mailer from configuration. Credentials are optional.
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPMailer{
		addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		auth:     auth,
		from:     cfg.From,
		fromName: cfg.FromName,
	}
}

// SendPasswordReset emails link to the given address.
func (m *SMTPMailer) SendPasswordReset(_ context.Context, to, link string) error {
	msg := m.compose(to, link)
	if err := msg.Send(); err != nil {
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

func (m *SMTPMailer) compose(to, link string) *mailyak.MailYak {
	msg := mailyak.New(m.addr, m.auth)
	msg.To(to)
	msg.From(m.from)
	msg.FromName(m.fromName)
	msg.Subject(resetSubject)
	msg.Plain().Set(plainBody(link))
	msg.HTML().Set(htmlBody(link))
	return msg
}

func plainBody(link string) string {
	return "Someone asked to reset the password for your guest list account.\n\n" +
		"Open this link within one hour to choose a new password:\n" + link + "\n\n" +
		"If this wasn't you, ignore this email.\n"
}

func htmlBody(link string) string {
	l := html.EscapeString(link)
	return `<p>Someone asked to reset the password for your guest list account.</p>` +
		`<p><a href="` + l + `">Choose a new password</a> (valid for one hour).</p>` +
		`<p>If this wasn't you, ignore this email.</p>`
}

// LogMailer writes reset links to the log instead of sending them. It is
// used when no SMTP host is configured.
type LogMailer struct {
	Logger *slog.Logger
}

// SendPasswordReset logs the link.
func (m LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset requested", "to", to, "link", link)
	return nil
}

// Sender delivers password reset links.
type Sender interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// New picks the SMTP mailer when a host is configured.
func New(cfg config.MailConfig, logger *slog.Logger) Sender {
	if cfg.Host == "" {
		return LogMailer{Logger: logger}
	}
	return NewSMTPMailer(cfg)
}
