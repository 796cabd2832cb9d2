package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/metrics"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
)

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// AuthService handles admin login and password resets.
type AuthService struct {
	admins  AdminStore
	signer  *auth.Signer
	mailer  Mailer
	baseURL string
	logger  *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(admins AdminStore, signer *auth.Signer, mailer Mailer, baseURL string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		admins:  admins,
		signer:  signer,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Login checks credentials and returns a session token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return "", invalid("Email and password are required")
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("get admin: %w", err)
	}
	if admin == nil || !auth.VerifyPassword(req.Password, admin.PasswordHash) {
		metrics.Login(false)
		return "", ErrInvalidCredentials
	}

	metrics.Login(true)
	return s.signer.NewSessionToken(admin.Email), nil
}

// RequestReset emails a reset link if email belongs to the admin. It
// succeeds either way so callers cannot probe for the address.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return invalid("Email is required")
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("get admin: %w", err)
	}

	token := s.signer.NewResetToken(admin.Email, admin.PasswordHash)
	link := s.baseURL + "/reset-password/" + token
	if err := s.mailer.SendPasswordReset(ctx, admin.Email, link); err != nil {
		s.logger.ErrorContext(ctx, "send reset email", "err", err)
	}
	return nil
}

// ConfirmReset sets a new password if token is a live reset token for the
// admin's current password.
func (s *AuthService) ConfirmReset(ctx context.Context, req model.ConfirmResetRequest) error {
	if req.Token == "" || req.Password == "" {
		return invalid("Token and password are required")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return invalid("Password must be at least 8 characters")
	}

	email, err := auth.TokenSubject(req.Token)
	if err != nil {
		return ErrInvalidResetLink
	}
	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetLink
		}
		return fmt.Errorf("get admin: %w", err)
	}
	if _, err := s.signer.VerifyResetToken(req.Token, admin.PasswordHash); err != nil {
		return ErrInvalidResetLink
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.admins.UpdatePasswordHash(ctx, admin.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.InfoContext(ctx, "admin password reset", "email", admin.Email)
	return nil
}

// SeedAdmin creates or replaces the admin account.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return invalid("Email is required")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return invalid("Password must be at least 8 characters")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.admins.Upsert(ctx, &model.AdminConfig{
		ID:           model.AdminID,
		Email:        email,
		PasswordHash: hash,
	})
}
