package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/agriclaim/review-api/internal/models"
)

// ProfileRepository fetches farmer profiles from the users collection.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID fetches a profile by identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	const query = `SELECT id, name, region, phone FROM users WHERE id = $1`
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}
