// Package repository implements all database queries for the guest list
// service. It uses pgx directly (no ORM).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// gigColumns lists gig columns in scanGig order.
const gigColumns = `g.id::text, g.slug, g.date, g.dj_name, g.venue_name, g.guest_cap,
	g.max_per_signup, g.is_closed, g.last_exported_at, g.created_at`

const guestColumns = `id::text, gig_id::text, name, email, quantity, created_at`

func scanGig(row pgx.Row, extra ...any) (*model.Gig, error) {
	var (
		g    model.Gig
		date time.Time
	)
	dest := append([]any{
		&g.ID, &g.Slug, &date, &g.DJName, &g.VenueName, &g.GuestCap,
		&g.MaxPerSignup, &g.IsClosed, &g.LastExportedAt, &g.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	g.Date = model.DateOf(date)
	return &g, nil
}

func scanGuest(row pgx.Row) (*model.Guest, error) {
	var g model.Guest
	if err := row.Scan(&g.ID, &g.GigID, &g.Name, &g.Email, &g.Quantity, &g.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func collectGuests(rows pgx.Rows) ([]model.Guest, error) {
	defer rows.Close()

	guests := []model.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, *g)
	}
	return guests, rows.Err()
}

// lockGig loads a gig by slug inside tx and holds its row lock until the
// transaction ends. Every write that depends on guest totals goes through
// here, which serialises admissions, cap edits and exports per gig.
func lockGig(ctx context.Context, tx pgx.Tx, slug string) (*model.Gig, error) {
	return scanGig(tx.QueryRow(ctx,
		`SELECT `+gigColumns+`
		 FROM gigs g
		 WHERE g.slug = $1
		 FOR UPDATE`,
		slug,
	))
}

// guestTotal returns the summed party sizes for a gig, and whether email
// (case-insensitively) is already present.
func guestTotal(ctx context.Context, q pgx.Tx, gigID, email string) (total int, taken bool, err error) {
	err = q.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::int,
		        COUNT(*) FILTER (WHERE lower(email) = lower($2)) > 0
		 FROM guests
		 WHERE gig_id = $1`,
		gigID, email,
	).Scan(&total, &taken)
	return total, taken, err
}

// inTx runs fn in a transaction, committing only if fn succeeds.
func inTx(ctx context.Context, db *pgxpool.Pool, fn func(pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
