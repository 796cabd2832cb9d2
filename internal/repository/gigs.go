package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// GigRepository handles persistence for guest lists.
type GigRepository struct {
	db *pgxpool.Pool
}

// NewGigRepository constructs a GigRepository.
func NewGigRepository(db *pgxpool.Pool) *GigRepository {
	return &GigRepository{db: db}
}

const insertGig = `INSERT INTO gigs
	(id, slug, date, dj_name, venue_name, guest_cap, max_per_signup, is_closed, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

func insertArgs(g *model.Gig) []any {
	return []any{
		g.ID, g.Slug, g.Date.Time, g.DJName, g.VenueName, g.GuestCap,
		g.MaxPerSignup, g.IsClosed, g.CreatedAt,
	}
}

// Create inserts a new gig.
func (r *GigRepository) Create(ctx context.Context, g *model.Gig) error {
	if _, err := r.db.Exec(ctx, insertGig, insertArgs(g)...); err != nil {
		return fmt.Errorf("insert gig: %w", err)
	}
	return nil
}

// CreateBatch inserts all gigs in one transaction; either every row is
// written or none is.
func (r *GigRepository) CreateBatch(ctx context.Context, gigs []*model.Gig) error {
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		b := &pgx.Batch{}
		for _, g := range gigs {
			b.Queue(insertGig, insertArgs(g)...)
		}
		br := tx.SendBatch(ctx, b)
		for i := range gigs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("gig %d: %w", i, err)
			}
		}
		return br.Close()
	})
	if err != nil {
		return fmt.Errorf("insert gig batch: %w", err)
	}
	return nil
}

// List returns every gig with guest totals, newest event date first.
func (r *GigRepository) List(ctx context.Context) ([]model.GigSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+gigColumns+`,
		        COALESCE(SUM(q.quantity), 0)::int,
		        COUNT(q.id)::int,
		        (COUNT(q.id) FILTER (
		            WHERE g.last_exported_at IS NOT NULL AND q.created_at > g.last_exported_at
		        ))::int
		 FROM gigs g
		 LEFT JOIN guests q ON q.gig_id = g.id
		 GROUP BY g.id
		 ORDER BY g.date DESC, g.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list gigs: %w", err)
	}
	defer rows.Close()

	summaries := []model.GigSummary{}
	for rows.Next() {
		var s model.GigSummary
		g, err := scanGig(rows, &s.TotalGuests, &s.SignUpCount, &s.NewGuestCount)
		if err != nil {
			return nil, fmt.Errorf("scan gig: %w", err)
		}
		s.Gig = *g
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// GetBySlug returns a single gig or ErrNotFound.
func (r *GigRepository) GetBySlug(ctx context.Context, slug string) (*model.Gig, error) {
	g, err := scanGig(r.db.QueryRow(ctx,
		`SELECT `+gigColumns+` FROM gigs g WHERE g.slug = $1`,
		slug,
	))
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("get gig: %w", err)
	}
	return g, nil
}

// Guests returns a gig's guests ordered by signup time.
func (r *GigRepository) Guests(ctx context.Context, gigID string) ([]model.Guest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+guestColumns+`
		 FROM guests
		 WHERE gig_id = $1
		 ORDER BY created_at ASC`,
		gigID,
	)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	guests, err := collectGuests(rows)
	if err != nil {
		return nil, fmt.Errorf("scan guest: %w", err)
	}
	return guests, nil
}

// Update applies a partial edit. Lowering the cap below the current guest
// total fails with *capacity.CapBelowTotalError and leaves the gig as is.
func (r *GigRepository) Update(ctx context.Context, slug string, p model.GigPatch) (*model.Gig, error) {
	var updated *model.Gig
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		g, err := lockGig(ctx, tx, slug)
		if err != nil {
			return err
		}

		if p.SetGuestCap && p.GuestCap != nil {
			total, _, err := guestTotal(ctx, tx, g.ID, "")
			if err != nil {
				return fmt.Errorf("sum guests: %w", err)
			}
			if err := capacity.CheckCap(p.GuestCap, total); err != nil {
				return err
			}
		}

		ApplyGigPatch(g, p)
		_, err = tx.Exec(ctx,
			`UPDATE gigs
			 SET date = $2, dj_name = $3, venue_name = $4, guest_cap = $5,
			     max_per_signup = $6, is_closed = $7
			 WHERE id = $1`,
			g.ID, g.Date.Time, g.DJName, g.VenueName, g.GuestCap, g.MaxPerSignup, g.IsClosed,
		)
		if err != nil {
			return fmt.Errorf("update gig: %w", err)
		}
		updated = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a gig and, through the foreign key, its guests.
func (r *GigRepository) Delete(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gigs WHERE slug = $1`, slug)
	if err != nil {
		return fmt.Errorf("delete gig: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Export returns the guests to put in a CSV and advances the gig's export
// watermark to now in the same transaction. With newOnly, only guests who
// signed up after the previous watermark are returned.
func (r *GigRepository) Export(ctx context.Context, slug string, newOnly bool, now time.Time) (*model.Gig, []model.Guest, error) {
	var (
		gig    *model.Gig
		guests []model.Guest
	)
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		g, err := lockGig(ctx, tx, slug)
		if err != nil {
			return err
		}

		var since *time.Time
		if newOnly {
			since = g.LastExportedAt
		}
		rows, err := tx.Query(ctx,
			`SELECT `+guestColumns+`
			 FROM guests
			 WHERE gig_id = $1 AND ($2::timestamptz IS NULL OR created_at > $2)
			 ORDER BY created_at ASC`,
			g.ID, since,
		)
		if err != nil {
			return fmt.Errorf("list guests: %w", err)
		}
		if guests, err = collectGuests(rows); err != nil {
			return fmt.Errorf("scan guest: %w", err)
		}

		if _, err := tx.Exec(ctx,
			`UPDATE gigs SET last_exported_at = $2 WHERE id = $1`,
			g.ID, now,
		); err != nil {
			return fmt.Errorf("advance export watermark: %w", err)
		}
		g.LastExportedAt = &now
		gig = g
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return gig, guests, nil
}

// ApplyGigPatch copies the fields present in p onto g.
func ApplyGigPatch(g *model.Gig, p model.GigPatch) {
	if p.Date != nil {
		g.Date = *p.Date
	}
	if p.DJName != nil {
		g.DJName = *p.DJName
	}
	if p.VenueName != nil {
		if *p.VenueName == "" {
			g.VenueName = nil
		} else {
			v := *p.VenueName
			g.VenueName = &v
		}
	}
	if p.SetGuestCap {
		g.GuestCap = p.GuestCap
	}
	if p.MaxPerSignup != nil {
		g.MaxPerSignup = *p.MaxPerSignup
	}
	if p.IsClosed != nil {
		g.IsClosed = *p.IsClosed
	}
}
