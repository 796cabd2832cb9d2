// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the storage layer.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// GigStore persists guest lists. Implementations return
// repository.ErrNotFound for unknown slugs.
type GigStore interface {
	Create(ctx context.Context, g *model.Gig) error
	CreateBatch(ctx context.Context, gigs []*model.Gig) error
	List(ctx context.Context) ([]model.GigSummary, error)
	GetBySlug(ctx context.Context, slug string) (*model.Gig, error)
	Guests(ctx context.Context, gigID string) ([]model.Guest, error)
	Update(ctx context.Context, slug string, p model.GigPatch) (*model.Gig, error)
	Delete(ctx context.Context, slug string) error
	Export(ctx context.Context, slug string, newOnly bool, now time.Time) (*model.Gig, []model.Guest, error)
}

// GuestStore persists signups. Admit must run the capacity decision and the
// insert atomically with respect to other admissions on the same gig.
type GuestStore interface {
	Admit(ctx context.Context, slug string, g *model.Guest) error
	Update(ctx context.Context, id string, p model.GuestPatch) (*model.Guest, error)
	Delete(ctx context.Context, id string) error
}

// AdminStore persists the admin credentials.
type AdminStore interface {
	GetByEmail(ctx context.Context, email string) (*model.AdminConfig, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	Upsert(ctx context.Context, a *model.AdminConfig) error
}

var (
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidResetLink covers every way a reset confirmation can fail.
	ErrInvalidResetLink = errors.New("invalid or expired reset link")
)

// ValidationError is a rejected request. Message is shown to the caller
// as is; Details lists per-item problems for batch requests.
type ValidationError struct {
	Message string
	Details []string
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, "; ")
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
