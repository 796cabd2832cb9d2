package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/guestlist/internal/capacity"
	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// GuestRepository handles persistence for signups.
type GuestRepository struct {
	db *pgxpool.Pool
}

// NewGuestRepository constructs a GuestRepository.
func NewGuestRepository(db *pgxpool.Pool) *GuestRepository {
	return &GuestRepository{db: db}
}

// Admit adds g to the gig identified by slug if the capacity rules allow it.
//
// The gig row is locked for the whole check-then-insert sequence, so two
// concurrent signups cannot both take the last spot. On success g.GigID is
// filled in. Rejections are the capacity package's errors, unwrapped.
func (r *GuestRepository) Admit(ctx context.Context, slug string, g *model.Guest) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		gig, err := lockGig(ctx, tx, slug)
		if err != nil {
			return err
		}

		total, taken, err := guestTotal(ctx, tx, gig.ID, g.Email)
		if err != nil {
			return fmt.Errorf("sum guests: %w", err)
		}
		state := capacity.State{
			IsClosed:     gig.IsClosed,
			GuestCap:     gig.GuestCap,
			MaxPerSignup: gig.MaxPerSignup,
			Total:        total,
			EmailTaken:   taken,
		}
		if err := capacity.Evaluate(state, g.Quantity); err != nil {
			return err
		}

		g.GigID = gig.ID
		_, err = tx.Exec(ctx,
			`INSERT INTO guests (id, gig_id, name, email, quantity, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.GigID, g.Name, g.Email, g.Quantity, g.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert guest: %w", err)
		}
		return nil
	})
}

// Update applies an admin edit to a guest. Capacity and duplicate checks
// do not apply here.
func (r *GuestRepository) Update(ctx context.Context, id string, p model.GuestPatch) (*model.Guest, error) {
	g, err := scanGuest(r.db.QueryRow(ctx,
		`UPDATE guests
		 SET name = COALESCE($2, name),
		     email = COALESCE($3, email),
		     quantity = COALESCE($4, quantity)
		 WHERE id = $1
		 RETURNING `+guestColumns,
		id, p.Name, p.Email, p.Quantity,
	))
	if err != nil {
		if err == ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("update guest: %w", err)
	}
	return g, nil
}

// Delete removes a guest.
func (r *GuestRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM guests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
