package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/agriclaim/review-api/internal/models"
)

const claimColumns = `id, user_id, reason, status, submitted_at, image_ref, document_refs, gps_latitude, gps_longitude, officer_remarks`

// ClaimRepository reads and mutates claim records in the claim store.
type ClaimRepository struct {
	db      *sqlx.DB
	channel string
}

// NewClaimRepository constructs the repository. channel is the pg_notify
// channel fired after every successful mutation so live queries converge.
func NewClaimRepository(db *sqlx.DB, channel string) *ClaimRepository {
	return &ClaimRepository{db: db, channel: channel}
}

// List returns claims matching the filter conjunction, ordered by
// submission time descending with id as the deterministic tiebreaker.
func (r *ClaimRepository) List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error) {
	builder := strings.Builder{}
	builder.WriteString("SELECT " + claimColumns + " FROM claims")
	args := make([]interface{}, 0, 2)

	conditions := make([]string, 0, 2)
	if filter.FiltersStatus() {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.FiltersReason() {
		args = append(args, filter.Reason)
		conditions = append(conditions, fmt.Sprintf("reason = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY submitted_at DESC, id ASC")

	var claims []models.Claim
	if err := r.db.SelectContext(ctx, &claims, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	for i := range claims {
		claims[i].NormalizeGPS()
	}
	return claims, nil
}

// GetByID fetches a single claim.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	const query = "SELECT " + claimColumns + " FROM claims WHERE id = $1"
	var claim models.Claim
	if err := r.db.GetContext(ctx, &claim, query, id); err != nil {
		return nil, err
	}
	claim.NormalizeGPS()
	return &claim, nil
}

// Exists reports whether a claim row is present at all. Used to tell a
// stale mutation apart from a mutation against a missing claim.
func (r *ClaimRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM claims WHERE id = $1)", id); err != nil {
		return false, fmt.Errorf("claim exists: %w", err)
	}
	return exists, nil
}

// UpdateStatusIfPending flips a pending claim to the given status and
// remarks in one conditional statement, then notifies the change channel
// within the same transaction. Returns the number of rows updated; zero
// means the precondition no longer held.
func (r *ClaimRepository) UpdateStatusIfPending(ctx context.Context, id string, next models.ClaimStatus, remarks string) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin claim update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx,
		`UPDATE claims SET status = $1, officer_remarks = $2 WHERE id = $3 AND status = $4`,
		next, remarks, id, models.ClaimStatusPending,
	)
	if err != nil {
		return 0, fmt.Errorf("update claim status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("claim update result: %w", err)
	}

	if affected > 0 && r.channel != "" {
		if _, err := tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", r.channel, id); err != nil {
			return 0, fmt.Errorf("notify claim change: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit claim update: %w", err)
	}
	return affected, nil
}
