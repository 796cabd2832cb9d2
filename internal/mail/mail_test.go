package mail

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guestlist/internal/config"
)

func TestCompose_ContainsLinkAndHeaders(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{
		Host:     "smtp.example.com",
		Port:     "587",
		From:     "lists@example.com",
		FromName: "Guest List",
	})

	buf, err := m.compose("admin@example.com", "https://lists.example.com/reset-password/abc").MimeBuf()
	require.NoError(t, err)

	body := buf.String()
	assert.Contains(t, body, "To: admin@example.com")
	assert.Contains(t, body, "Subject: "+resetSubject)
	assert.Contains(t, body, "https://lists.example.com/reset-password/abc")
	assert.Equal(t, "smtp.example.com:587", m.addr)
	assert.Nil(t, m.auth)
}

func TestHTMLBody_EscapesLink(t *testing.T) {
	assert.Contains(t, htmlBody(`https://x/?a=1&b="2"`), `https://x/?a=1&amp;b=&#34;2&#34;`)
}

func TestNew_FallsBackToLog(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	s := New(config.MailConfig{}, logger)
	require.IsType(t, LogMailer{}, s)

	require.NoError(t, s.SendPasswordReset(context.Background(), "admin@example.com", "http://localhost/reset-password/t"))
	assert.Contains(t, buf.String(), "reset-password/t")

	assert.IsType(t, &SMTPMailer{}, New(config.MailConfig{Host: "smtp.example.com", Port: "25"}, logger))
}
