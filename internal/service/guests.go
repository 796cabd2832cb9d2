package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/metrics"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
)

// Signup adds a party to a public guest list. The email is stored
// lowercased and trimmed; the capacity decision runs in the store under
// the gig's lock.
func (s *GigService) Signup(ctx context.Context, sl string, req model.SignupRequest) (*model.Guest, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || email == "" || req.Quantity.Missing() {
		return nil, invalid("Name, email, and quantity are required")
	}

	quantity := req.Quantity.Value
	if req.Quantity.Err != nil {
		quantity = 0
	}

	guest := &model.Guest{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Quantity:  quantity,
		CreatedAt: s.opts.Now().UTC(),
	}
	err := s.guests.Admit(ctx, sl, guest)
	metrics.Signup(signupResult(err), quantity)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || isRejection(err) {
			return nil, err
		}
		return nil, fmt.Errorf("admit guest: %w", err)
	}

	s.opts.Logger.InfoContext(ctx, "guest admitted",
		"gig", sl, "guest_id", guest.ID, "quantity", guest.Quantity)
	return guest, nil
}

// isRejection reports whether err is one of the capacity decisions.
func isRejection(err error) bool {
	var (
		maxErr *capacity.MaxPerSignupError
		remErr *capacity.RemainingError
	)
	return errors.Is(err, capacity.ErrClosed) ||
		errors.Is(err, capacity.ErrInvalidQuantity) ||
		errors.Is(err, capacity.ErrDuplicateEmail) ||
		errors.Is(err, capacity.ErrFull) ||
		errors.As(err, &maxErr) ||
		errors.As(err, &remErr)
}

func signupResult(err error) string {
	var (
		maxErr *capacity.MaxPerSignupError
		remErr *capacity.RemainingError
	)
	switch {
	case err == nil:
		return "admitted"
	case errors.Is(err, repository.ErrNotFound):
		return "not_found"
	case errors.Is(err, capacity.ErrClosed):
		return "closed"
	case errors.Is(err, capacity.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, capacity.ErrDuplicateEmail):
		return "duplicate"
	case errors.As(err, &maxErr):
		return "max_per_signup"
	case errors.Is(err, capacity.ErrFull):
		return "full"
	case errors.As(err, &remErr):
		return "exceeds_remaining"
	default:
		return "error"
	}
}

// UpdateGuest applies an organizer's edit. Organizers may exceed the cap
// and reuse an email; only the party size is validated.
func (s *GigService) UpdateGuest(ctx context.Context, id string, req model.UpdateGuestRequest) (*model.Guest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, repository.ErrNotFound
	}

	var p model.GuestPatch
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("Name cannot be empty")
		}
		p.Name = &name
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, invalid("Email cannot be empty")
		}
		p.Email = req.Email
	}
	if req.Quantity.Set {
		if req.Quantity.Null || req.Quantity.Err != nil || req.Quantity.Value < 1 {
			return nil, capacity.ErrInvalidQuantity
		}
		q := req.Quantity.Value
		p.Quantity = &q
	}

	g, err := s.guests.Update(ctx, id, p)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return g, nil
}

// DeleteGuest removes a single signup.
func (s *GigService) DeleteGuest(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrNotFound
	}
	if err := s.guests.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}
