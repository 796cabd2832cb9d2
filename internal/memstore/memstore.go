// Package memstore keeps guest lists in process memory. It backs the
// "memory" database driver and the service and handler tests. A single
// mutex serialises every operation, which gives admissions the same
// atomicity the Postgres row lock does.
package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
)

// Store is the shared in-memory state.
type Store struct {
	mu     sync.Mutex
	gigs   []*model.Gig
	guests []*model.Guest // insertion order
	admin  *model.AdminConfig
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Gigs returns the guest list view of the store.
func (s *Store) Gigs() *GigStore { return &GigStore{s} }

// Guests returns the signup view of the store.
func (s *Store) Guests() *GuestStore { return &GuestStore{s} }

// Admins returns the credential view of the store.
func (s *Store) Admins() *AdminStore { return &AdminStore{s} }

func (s *Store) gigBySlug(slug string) *model.Gig {
	for _, g := range s.gigs {
		if g.Slug == slug {
			return g
		}
	}
	return nil
}

func (s *Store) guestsOf(gigID string) []model.Guest {
	out := []model.Guest{}
	for _, g := range s.guests {
		if g.GigID == gigID {
			out = append(out, *g)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Guest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func copyGig(g *model.Gig) *model.Gig {
	c := *g
	return &c
}

// GigStore implements service.GigStore.
type GigStore struct{ s *Store }

// Create inserts a gig. Slugs must be unique.
func (v *GigStore) Create(_ context.Context, g *model.Gig) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if v.s.gigBySlug(g.Slug) != nil {
		return fmt.Errorf("slug %q already exists", g.Slug)
	}
	v.s.gigs = append(v.s.gigs, copyGig(g))
	return nil
}

// CreateBatch inserts every gig or none.
func (v *GigStore) CreateBatch(_ context.Context, gigs []*model.Gig) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	seen := make(map[string]bool, len(gigs))
	for i, g := range gigs {
		if seen[g.Slug] || v.s.gigBySlug(g.Slug) != nil {
			return fmt.Errorf("gig %d: slug %q already exists", i, g.Slug)
		}
		seen[g.Slug] = true
	}
	for _, g := range gigs {
		v.s.gigs = append(v.s.gigs, copyGig(g))
	}
	return nil
}

// List returns every gig with guest counts, newest event date first.
func (v *GigStore) List(_ context.Context) ([]model.GigSummary, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	out := make([]model.GigSummary, 0, len(v.s.gigs))
	for _, g := range v.s.gigs {
		guests := v.s.guestsOf(g.ID)
		out = append(out, model.GigSummary{
			Gig:           *g,
			TotalGuests:   model.TotalQuantity(guests),
			SignUpCount:   len(guests),
			NewGuestCount: model.CountSince(guests, g.LastExportedAt),
		})
	}
	slices.SortStableFunc(out, func(a, b model.GigSummary) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// GetBySlug returns a copy of one gig.
func (v *GigStore) GetBySlug(_ context.Context, slug string) (*model.Gig, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	g := v.s.gigBySlug(slug)
	if g == nil {
		return nil, repository.ErrNotFound
	}
	return copyGig(g), nil
}

// Guests returns a gig's guests in signup order.
func (v *GigStore) Guests(_ context.Context, gigID string) ([]model.Guest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return v.s.guestsOf(gigID), nil
}

// Update applies a patch, refusing a cap below the current total.
func (v *GigStore) Update(_ context.Context, slug string, p model.GigPatch) (*model.Gig, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	g := v.s.gigBySlug(slug)
	if g == nil {
		return nil, repository.ErrNotFound
	}
	if p.SetGuestCap {
		total := model.TotalQuantity(v.s.guestsOf(g.ID))
		if err := capacity.CheckCap(p.GuestCap, total); err != nil {
			return nil, err
		}
	}
	repository.ApplyGigPatch(g, p)
	return copyGig(g), nil
}

// Delete removes a gig and its guests.
func (v *GigStore) Delete(_ context.Context, slug string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	i := slices.IndexFunc(v.s.gigs, func(g *model.Gig) bool { return g.Slug == slug })
	if i < 0 {
		return repository.ErrNotFound
	}
	id := v.s.gigs[i].ID
	v.s.gigs = slices.Delete(v.s.gigs, i, i+1)
	v.s.guests = slices.DeleteFunc(v.s.guests, func(g *model.Guest) bool { return g.GigID == id })
	return nil
}

// Export returns the guests to export and advances the watermark.
func (v *GigStore) Export(_ context.Context, slug string, newOnly bool, now time.Time) (*model.Gig, []model.Guest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	g := v.s.gigBySlug(slug)
	if g == nil {
		return nil, nil, repository.ErrNotFound
	}
	guests := v.s.guestsOf(g.ID)
	if newOnly && g.LastExportedAt != nil {
		since := *g.LastExportedAt
		guests = slices.DeleteFunc(guests, func(q model.Guest) bool { return !q.CreatedAt.After(since) })
	}
	g.LastExportedAt = &now
	return copyGig(g), guests, nil
}

// GuestStore implements service.GuestStore.
type GuestStore struct{ s *Store }

// Admit runs the capacity decision and inserts g under the store lock.
func (v *GuestStore) Admit(_ context.Context, slug string, g *model.Guest) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	gig := v.s.gigBySlug(slug)
	if gig == nil {
		return repository.ErrNotFound
	}
	guests := v.s.guestsOf(gig.ID)
	taken := slices.ContainsFunc(guests, func(q model.Guest) bool {
		return strings.EqualFold(q.Email, g.Email)
	})
	state := capacity.State{
		IsClosed:     gig.IsClosed,
		GuestCap:     gig.GuestCap,
		MaxPerSignup: gig.MaxPerSignup,
		Total:        model.TotalQuantity(guests),
		EmailTaken:   taken,
	}
	if err := capacity.Evaluate(state, g.Quantity); err != nil {
		return err
	}

	g.GigID = gig.ID
	c := *g
	v.s.guests = append(v.s.guests, &c)
	return nil
}

// Update edits a guest without capacity checks.
func (v *GuestStore) Update(_ context.Context, id string, p model.GuestPatch) (*model.Guest, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	i := slices.IndexFunc(v.s.guests, func(g *model.Guest) bool { return g.ID == id })
	if i < 0 {
		return nil, repository.ErrNotFound
	}
	g := v.s.guests[i]
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.Email != nil {
		g.Email = *p.Email
	}
	if p.Quantity != nil {
		g.Quantity = *p.Quantity
	}
	c := *g
	return &c, nil
}

// Delete removes a guest.
func (v *GuestStore) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	n := len(v.s.guests)
	v.s.guests = slices.DeleteFunc(v.s.guests, func(g *model.Guest) bool { return g.ID == id })
	if len(v.s.guests) == n {
		return repository.ErrNotFound
	}
	return nil
}

// AdminStore implements service.AdminStore.
type AdminStore struct{ s *Store }

// GetByEmail matches the admin email case-insensitively.
func (v *AdminStore) GetByEmail(_ context.Context, email string) (*model.AdminConfig, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if v.s.admin == nil || !strings.EqualFold(v.s.admin.Email, email) {
		return nil, repository.ErrNotFound
	}
	a := *v.s.admin
	return &a, nil
}

// UpdatePasswordHash replaces the admin's hash.
func (v *AdminStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	if v.s.admin == nil || v.s.admin.ID != id {
		return repository.ErrNotFound
	}
	v.s.admin.PasswordHash = hash
	return nil
}

// Upsert creates or replaces the admin.
func (v *AdminStore) Upsert(_ context.Context, a *model.AdminConfig) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	c := *a
	v.s.admin = &c
	return nil
}
