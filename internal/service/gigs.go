package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Shivanand-hulikatti/guestlist/internal/calendar"
	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/csvexport"
	"github.com/Shivanand-hulikatti/guestlist/internal/metrics"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
	"github.com/Shivanand-hulikatti/guestlist/internal/slug"
)

// GigOptions configures a GigService. Zero values pick sensible defaults.
type GigOptions struct {
	// BaseURL is the public origin used for links in the calendar feed.
	BaseURL string
	// BatchGuestCap is the cap given to batch and imported lists that do
	// not specify one.
	BatchGuestCap int
	// BatchMaxPerSignup is the party-size limit for imported lists.
	BatchMaxPerSignup int

	Now     func() time.Time
	NewSlug func() (string, error)
	Logger  *slog.Logger
}

// GigService orchestrates guest list business operations.
type GigService struct {
	gigs   GigStore
	guests GuestStore
	opts   GigOptions
}

// NewGigService constructs a GigService with its dependencies.
func NewGigService(gigs GigStore, guests GuestStore, opts GigOptions) *GigService {
	if opts.BatchGuestCap == 0 {
		opts.BatchGuestCap = 75
	}
	if opts.BatchMaxPerSignup == 0 {
		opts.BatchMaxPerSignup = model.DefaultMaxPerSignup
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewSlug == nil {
		opts.NewSlug = slug.New
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &GigService{gigs: gigs, guests: guests, opts: opts}
}

// newGig validates one creation request. Problems are returned as phrases
// that read after "Gig at index N ".
func (s *GigService) newGig(req model.CreateGigRequest, defaultCap *int) (*model.Gig, []string) {
	var problems []string

	req.DJName = strings.TrimSpace(req.DJName)
	var date model.Date
	if strings.TrimSpace(req.Date) == "" {
		problems = append(problems, "is missing date")
	} else if d, err := model.ParseDate(req.Date); err != nil {
		problems = append(problems, "has an invalid date")
	} else {
		date = d
	}
	if req.DJName == "" {
		problems = append(problems, "is missing djName")
	}

	guestCap := defaultCap
	switch {
	case req.GuestCap.Missing():
	case req.GuestCap.Err != nil || req.GuestCap.Value < 0:
		problems = append(problems, "has an invalid guestCap")
	default:
		v := req.GuestCap.Value
		guestCap = &v
	}

	maxPerSignup := model.DefaultMaxPerSignup
	switch {
	case req.MaxPerSignup.Missing():
	case req.MaxPerSignup.Err != nil || req.MaxPerSignup.Value < 1:
		problems = append(problems, "has an invalid maxPerSignup")
	default:
		maxPerSignup = req.MaxPerSignup.Value
	}

	if len(problems) > 0 {
		return nil, problems
	}

	var venue *string
	if req.VenueName != nil {
		if v := strings.TrimSpace(*req.VenueName); v != "" {
			venue = &v
		}
	}
	return &model.Gig{
		Date:         date,
		DJName:       req.DJName,
		VenueName:    venue,
		GuestCap:     guestCap,
		MaxPerSignup: maxPerSignup,
	}, nil
}

// stamp gives a validated gig its identity.
func (s *GigService) stamp(g *model.Gig) error {
	sl, err := s.opts.NewSlug()
	if err != nil {
		return fmt.Errorf("generate slug: %w", err)
	}
	g.ID = uuid.NewString()
	g.Slug = sl
	g.CreatedAt = s.opts.Now().UTC()
	return nil
}

// CreateGig validates the request and stores a new list. A guestCap of 0
// or none at all means unlimited.
func (s *GigService) CreateGig(ctx context.Context, req model.CreateGigRequest) (*model.Gig, error) {
	g, problems := s.newGig(req, nil)
	if len(problems) > 0 {
		for _, p := range problems {
			if strings.HasPrefix(p, "is missing") {
				return nil, invalid("Date and DJ name are required")
			}
		}
		return nil, invalid("Gig " + problems[0])
	}
	if g.GuestCap != nil && *g.GuestCap == 0 {
		g.GuestCap = nil
	}
	if err := s.stamp(g); err != nil {
		return nil, err
	}
	if err := s.gigs.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("create gig: %w", err)
	}
	metrics.GigsCreated("single", 1)
	return g, nil
}

// CreateBatch validates every item before writing any, then creates them
// all in one transaction.
func (s *GigService) CreateBatch(ctx context.Context, req model.BatchCreateRequest) ([]model.Gig, error) {
	if len(req.Gigs) == 0 {
		return nil, invalid("gigs array is required and must not be empty")
	}

	defaultCap := s.opts.BatchGuestCap
	gigs := make([]*model.Gig, 0, len(req.Gigs))
	var details []string
	for i, item := range req.Gigs {
		g, problems := s.newGig(item, &defaultCap)
		for _, p := range problems {
			details = append(details, fmt.Sprintf("Gig at index %d %s", i, p))
		}
		if g != nil {
			gigs = append(gigs, g)
		}
	}
	if len(details) > 0 {
		return nil, &ValidationError{Message: "Validation failed", Details: details}
	}

	return s.createAll(ctx, gigs, "batch")
}

func (s *GigService) createAll(ctx context.Context, gigs []*model.Gig, source string) ([]model.Gig, error) {
	for _, g := range gigs {
		if err := s.stamp(g); err != nil {
			return nil, err
		}
	}
	if err := s.gigs.CreateBatch(ctx, gigs); err != nil {
		return nil, fmt.Errorf("create gigs: %w", err)
	}
	metrics.GigsCreated(source, len(gigs))

	out := make([]model.Gig, len(gigs))
	for i, g := range gigs {
		out[i] = *g
	}
	return out, nil
}

// ListGigs returns every list with its guest counts.
func (s *GigService) ListGigs(ctx context.Context) ([]model.GigSummary, error) {
	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list gigs: %w", err)
	}
	return gigs, nil
}

func (s *GigService) load(ctx context.Context, sl string) (*model.Gig, []model.Guest, error) {
	g, err := s.gigs.GetBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, repository.ErrNotFound
		}
		return nil, nil, fmt.Errorf("get gig: %w", err)
	}
	guests, err := s.gigs.Guests(ctx, g.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("get guests: %w", err)
	}
	return g, guests, nil
}

// GetGig returns a list with its full guest list, for the organizer.
func (s *GigService) GetGig(ctx context.Context, sl string) (*model.GigDetail, error) {
	g, guests, err := s.load(ctx, sl)
	if err != nil {
		return nil, err
	}
	return &model.GigDetail{
		Gig:         *g,
		Guests:      guests,
		TotalGuests: model.TotalQuantity(guests),
		SignUpCount: len(guests),
	}, nil
}

// PublicGig returns what the sign-up page needs, without guest details.
func (s *GigService) PublicGig(ctx context.Context, sl string) (*model.PublicGig, error) {
	g, guests, err := s.load(ctx, sl)
	if err != nil {
		return nil, err
	}
	total := model.TotalQuantity(guests)
	remaining := capacity.Remaining(g.GuestCap, total)
	return &model.PublicGig{
		Slug:         g.Slug,
		Date:         g.Date,
		DJName:       g.DJName,
		VenueName:    g.VenueName,
		IsClosed:     g.IsClosed,
		GuestCap:     g.GuestCap,
		MaxPerSignup: g.MaxPerSignup,
		TotalGuests:  total,
		Remaining:    remaining,
		EffectiveMax: capacity.EffectiveMax(g.MaxPerSignup, g.GuestCap, total),
		IsFull:       remaining != nil && *remaining == 0,
	}, nil
}

// UpdateGig applies a partial edit. The store rejects a cap below the
// current total with *capacity.CapBelowTotalError.
func (s *GigService) UpdateGig(ctx context.Context, sl string, req model.UpdateGigRequest) (*model.Gig, error) {
	var p model.GigPatch

	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			return nil, invalid("Invalid date")
		}
		p.Date = &d
	}
	if req.DJName != nil {
		name := strings.TrimSpace(*req.DJName)
		if name == "" {
			return nil, invalid("DJ name cannot be empty")
		}
		p.DJName = &name
	}
	if req.VenueName != nil {
		v := strings.TrimSpace(*req.VenueName)
		p.VenueName = &v
	}
	if req.GuestCap.Set {
		p.SetGuestCap = true
		switch {
		case req.GuestCap.Null:
		case req.GuestCap.Err != nil || req.GuestCap.Value < 0:
			return nil, invalid("Guest cap must be a non-negative integer")
		default:
			v := req.GuestCap.Value
			p.GuestCap = &v
		}
	}
	if req.MaxPerSignup.Set {
		if req.MaxPerSignup.Null || req.MaxPerSignup.Err != nil || req.MaxPerSignup.Value < 1 {
			return nil, invalid("Max per signup must be at least 1")
		}
		v := req.MaxPerSignup.Value
		p.MaxPerSignup = &v
	}
	p.IsClosed = req.IsClosed

	return s.update(ctx, sl, p)
}

// SetClosed closes or reopens a list. Existing guests are unaffected.
func (s *GigService) SetClosed(ctx context.Context, sl string, closed bool) (*model.Gig, error) {
	return s.update(ctx, sl, model.GigPatch{IsClosed: &closed})
}

func (s *GigService) update(ctx context.Context, sl string, p model.GigPatch) (*model.Gig, error) {
	g, err := s.gigs.Update(ctx, sl, p)
	if err != nil {
		var capErr *capacity.CapBelowTotalError
		if errors.Is(err, repository.ErrNotFound) || errors.As(err, &capErr) {
			return nil, err
		}
		return nil, fmt.Errorf("update gig: %w", err)
	}
	return g, nil
}

// DeleteGig removes a list and all its guests.
func (s *GigService) DeleteGig(ctx context.Context, sl string) error {
	if err := s.gigs.Delete(ctx, sl); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete gig: %w", err)
	}
	return nil
}

// CSVExport is a rendered guest list download.
type CSVExport struct {
	Filename string
	Data     []byte
	Rows     int
}

// ExportCSV renders the list's guests and moves its export watermark to
// now. With newOnly, only guests added since the previous export are
// included; a list that was never exported yields everyone.
func (s *GigService) ExportCSV(ctx context.Context, sl string, newOnly bool) (*CSVExport, error) {
	g, guests, err := s.gigs.Export(ctx, sl, newOnly, s.opts.Now().UTC())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("export gig: %w", err)
	}
	metrics.Export(newOnly)
	return &CSVExport{
		Filename: csvexport.Filename(g.DJName, g.Date),
		Data:     csvexport.Render(guests),
		Rows:     len(guests),
	}, nil
}

// Feed renders every list as an iCalendar document.
func (s *GigService) Feed(ctx context.Context) (string, error) {
	gigs, err := s.gigs.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list gigs: %w", err)
	}
	return calendar.Feed(gigs, s.opts.BaseURL, s.opts.Now()), nil
}
