package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/memstore"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

type sentMail struct {
	to, link string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.sent = append(m.sent, sentMail{to: to, link: link})
	return m.err
}

func newAuthService(t *testing.T) (*AuthService, *fakeMailer, *auth.Signer) {
	t.Helper()
	store := memstore.New()
	signer := auth.NewSigner("test-secret")
	mailer := &fakeMailer{}
	svc := NewAuthService(store.Admins(), signer, mailer, "https://lists.example.com/", nil)
	require.NoError(t, svc.SeedAdmin(context.Background(), "Admin@Example.com", "old-password"))
	return svc, mailer, signer
}

func TestLogin(t *testing.T) {
	svc, _, signer := newAuthService(t)
	ctx := context.Background()

	token, err := svc.Login(ctx, model.LoginRequest{Email: "admin@example.com", Password: "old-password"})
	require.NoError(t, err)
	email, err := signer.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", email)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "admin@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "old-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, model.LoginRequest{Email: "admin@example.com"})
	var v *ValidationError
	assert.True(t, errors.As(err, &v))
}

func TestRequestReset_UnknownEmailSendsNothing(t *testing.T) {
	svc, mailer, _ := newAuthService(t)

	require.NoError(t, svc.RequestReset(context.Background(), "stranger@example.com"))
	assert.Empty(t, mailer.sent)
}

func TestRequestReset_MailFailureIsNotReported(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	mailer.err = errors.New("smtp down")

	assert.NoError(t, svc.RequestReset(context.Background(), "admin@example.com"))
	assert.Len(t, mailer.sent, 1)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, mailer, _ := newAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.RequestReset(ctx, "ADMIN@example.com"))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@example.com", mailer.sent[0].to)

	prefix := "https://lists.example.com/reset-password/"
	require.True(t, strings.HasPrefix(mailer.sent[0].link, prefix))
	token := strings.TrimPrefix(mailer.sent[0].link, prefix)

	err := svc.ConfirmReset(ctx, model.ConfirmResetRequest{Token: token, Password: "short"})
	var v *ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "Password must be at least 8 characters", v.Message)

	require.NoError(t, svc.ConfirmReset(ctx, model.ConfirmResetRequest{Token: token, Password: "new-password"}))

	_, err = svc.Login(ctx, model.LoginRequest{Email: "admin@example.com", Password: "new-password"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, model.LoginRequest{Email: "admin@example.com", Password: "old-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ConfirmReset(ctx, model.ConfirmResetRequest{Token: token, Password: "another-password"})
	assert.ErrorIs(t, err, ErrInvalidResetLink, "a used link dies with the old hash")
}

func TestConfirmReset_Garbage(t *testing.T) {
	svc, _, _ := newAuthService(t)

	err := svc.ConfirmReset(context.Background(), model.ConfirmResetRequest{Token: "garbage", Password: "long-enough"})
	assert.ErrorIs(t, err, ErrInvalidResetLink)
}
