package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

type claimStore interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error)
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateStatusIfPending(ctx context.Context, id string, next models.ClaimStatus, remarks string) (int64, error)
}

// ClaimService reads claims and applies officer decisions. Only pending
// claims may be resolved; the precondition is enforced store-side with a
// conditional update so a concurrent decision loses cleanly.
type ClaimService struct {
	repo      claimStore
	enricher  *Enricher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClaimService constructs the service.
func NewClaimService(repo claimStore, enricher *Enricher, validate *validator.Validate, logger *zap.Logger) *ClaimService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{repo: repo, enricher: enricher, validator: validate, logger: logger}
}

type listConstraints struct {
	Status string `validate:"omitempty,oneof=pending approved rejected all"`
}

// List returns the enriched projection of claims matching the filter.
func (s *ClaimService) List(ctx context.Context, filter models.ClaimFilter) ([]models.ViewClaim, error) {
	if err := s.validator.Struct(listConstraints{Status: filter.Status}); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved, rejected or all")
	}
	claims, err := s.repo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list claims")
	}
	return s.enricher.EnrichBatch(ctx, claims), nil
}

// Get returns one enriched claim for the detail view.
func (s *ClaimService) Get(ctx context.Context, id string) (*models.ViewClaim, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "get claim")
	}
	view := ProjectClaim(*claim, s.enricher.Enrich(ctx, *claim))
	return &view, nil
}

// Approve resolves a pending claim, clearing any officer remarks.
func (s *ClaimService) Approve(ctx context.Context, id string) error {
	return s.resolve(ctx, id, models.ClaimStatusApproved, "")
}

// Reject resolves a pending claim with a mandatory remark. An empty or
// whitespace-only reason fails before any store call is made.
func (s *ClaimService) Reject(ctx context.Context, id, reason string) error {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	return s.resolve(ctx, id, models.ClaimStatusRejected, trimmed)
}

func (s *ClaimService) resolve(ctx context.Context, id string, next models.ClaimStatus, remarks string) error {
	affected, err := s.repo.UpdateStatusIfPending(ctx, id, next, remarks)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve claim")
	}
	if affected > 0 {
		s.logger.Info("claim resolved",
			zap.String("claim_id", id),
			zap.String("status", string(next)),
		)
		return nil
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "resolve claim")
	}
	if !exists {
		return appErrors.ErrNotFound
	}
	return appErrors.ErrStaleClaim
}
