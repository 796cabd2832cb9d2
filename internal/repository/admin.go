package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Shivanand-hulikatti/guestlist/internal/model"
)

// AdminRepository reads and writes the singleton admin credentials.
type AdminRepository struct {
	db *pgxpool.Pool
}

// NewAdminRepository constructs an AdminRepository.
func NewAdminRepository(db *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{db: db}
}

// GetByEmail looks the admin up case-insensitively.
func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*model.AdminConfig, error) {
	var a model.AdminConfig
	err := r.db.QueryRow(ctx,
		`SELECT id, email, password_hash
		 FROM admin_config
		 WHERE lower(email) = lower($1)`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &a, nil
}

// UpdatePasswordHash replaces the stored hash, which also invalidates any
// outstanding reset tokens.
func (r *AdminRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE admin_config SET password_hash = $2 WHERE id = $1`,
		id, hash,
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Upsert creates or replaces the admin row.
func (r *AdminRepository) Upsert(ctx context.Context, a *model.AdminConfig) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO admin_config (id, email, password_hash)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET email = EXCLUDED.email, password_hash = EXCLUDED.password_hash`,
		a.ID, a.Email, a.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	return nil
}
