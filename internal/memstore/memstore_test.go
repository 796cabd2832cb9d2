package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
)

var t0 = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func seedGig(t *testing.T, s *Store, slug string, guestCap *int) *model.Gig {
	t.Helper()
	g := &model.Gig{
		ID:           "gig-" + slug,
		Slug:         slug,
		Date:         model.DateOf(t0),
		DJName:       "DJ " + slug,
		GuestCap:     guestCap,
		MaxPerSignup: 10,
		CreatedAt:    t0,
	}
	require.NoError(t, s.Gigs().Create(context.Background(), g))
	return g
}

func guest(id, email string, q int, at time.Time) *model.Guest {
	return &model.Guest{ID: id, Name: id, Email: email, Quantity: q, CreatedAt: at}
}

func TestAdmit_ConcurrentSignupsNeverOvershoot(t *testing.T) {
	s := New()
	guestCap := 5
	seedGig(t, s, "busy", &guestCap)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
	)
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Guests().Admit(context.Background(), "busy",
				guest(fmt.Sprint(i), fmt.Sprintf("g%d@example.com", i), 1, t0))
			if err == nil {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted)
	list, err := s.Gigs().List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, list[0].TotalGuests)
}

func TestAdmit_DuplicateEmailIsCaseInsensitive(t *testing.T) {
	s := New()
	seedGig(t, s, "dup", nil)
	ctx := context.Background()

	require.NoError(t, s.Guests().Admit(ctx, "dup", guest("a", "ada@example.com", 1, t0)))
	err := s.Guests().Admit(ctx, "dup", guest("b", "ADA@example.com", 1, t0))
	assert.ErrorIs(t, err, capacity.ErrDuplicateEmail)

	err = s.Guests().Admit(ctx, "missing", guest("c", "c@example.com", 1, t0))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdate_CapBelowTotalLeavesGigUnchanged(t *testing.T) {
	s := New()
	seedGig(t, s, "cap", nil)
	ctx := context.Background()
	require.NoError(t, s.Guests().Admit(ctx, "cap", guest("a", "a@example.com", 3, t0)))

	lower := 2
	_, err := s.Gigs().Update(ctx, "cap", model.GigPatch{SetGuestCap: true, GuestCap: &lower})
	var capErr *capacity.CapBelowTotalError
	require.True(t, errors.As(err, &capErr))
	assert.Equal(t, 3, capErr.Total)

	g, err := s.Gigs().GetBySlug(ctx, "cap")
	require.NoError(t, err)
	assert.Nil(t, g.GuestCap)

	exact := 3
	g, err = s.Gigs().Update(ctx, "cap", model.GigPatch{SetGuestCap: true, GuestCap: &exact})
	require.NoError(t, err)
	assert.Equal(t, 3, *g.GuestCap)
}

func TestExport_AdvancesWatermark(t *testing.T) {
	s := New()
	seedGig(t, s, "exp", nil)
	ctx := context.Background()
	require.NoError(t, s.Guests().Admit(ctx, "exp", guest("a", "a@example.com", 1, t0.Add(time.Minute))))

	first := t0.Add(time.Hour)
	g, guests, err := s.Gigs().Export(ctx, "exp", true, first)
	require.NoError(t, err)
	assert.Len(t, guests, 1, "never exported: new-only yields everyone")
	assert.Equal(t, first, *g.LastExportedAt)

	require.NoError(t, s.Guests().Admit(ctx, "exp", guest("b", "b@example.com", 2, first.Add(time.Minute))))

	list, err := s.Gigs().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, list[0].NewGuestCount)

	_, guests, err = s.Gigs().Export(ctx, "exp", true, first.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, guests, 1)
	assert.Equal(t, "b", guests[0].ID)

	_, guests, err = s.Gigs().Export(ctx, "exp", false, first.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Len(t, guests, 2)
}

func TestDelete_CascadesToGuests(t *testing.T) {
	s := New()
	g := seedGig(t, s, "gone", nil)
	ctx := context.Background()
	require.NoError(t, s.Guests().Admit(ctx, "gone", guest("a", "a@example.com", 1, t0)))

	require.NoError(t, s.Gigs().Delete(ctx, "gone"))
	assert.ErrorIs(t, s.Gigs().Delete(ctx, "gone"), repository.ErrNotFound)

	guests, err := s.Gigs().Guests(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, guests)
	assert.ErrorIs(t, s.Guests().Delete(ctx, "a"), repository.ErrNotFound)
}

func TestCreateBatch_AllOrNothing(t *testing.T) {
	s := New()
	seedGig(t, s, "taken", nil)
	ctx := context.Background()

	err := s.Gigs().CreateBatch(ctx, []*model.Gig{
		{ID: "1", Slug: "fresh", Date: model.DateOf(t0)},
		{ID: "2", Slug: "taken", Date: model.DateOf(t0)},
	})
	require.Error(t, err)

	_, err = s.Gigs().GetBySlug(ctx, "fresh")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestList_NewestDateFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	for i, d := range []int{3, 9, 1} {
		require.NoError(t, s.Gigs().Create(ctx, &model.Gig{
			ID:   fmt.Sprint(i),
			Slug: fmt.Sprintf("s%d", i),
			Date: model.DateOf(time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)),
		}))
	}

	list, err := s.Gigs().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"s1", "s0", "s2"}, []string{list[0].Slug, list[1].Slug, list[2].Slug})
}

func TestAdmins(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Admins().GetByEmail(ctx, "admin@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Admins().Upsert(ctx, &model.AdminConfig{ID: model.AdminID, Email: "admin@example.com", PasswordHash: "s:h"}))
	require.NoError(t, s.Admins().UpdatePasswordHash(ctx, model.AdminID, "s:h2"))

	a, err := s.Admins().GetByEmail(ctx, "Admin@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "s:h2", a.PasswordHash)
}
