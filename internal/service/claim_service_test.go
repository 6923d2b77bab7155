package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

type mockClaimStore struct {
	claims      map[string]models.Claim
	updateCalls int
}

func (m *mockClaimStore) List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error) {
	var result []models.Claim
	for _, c := range m.claims {
		if filter.Matches(c) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockClaimStore) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	claim, ok := m.claims[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &claim, nil
}

func (m *mockClaimStore) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := m.claims[id]
	return ok, nil
}

func (m *mockClaimStore) UpdateStatusIfPending(ctx context.Context, id string, next models.ClaimStatus, remarks string) (int64, error) {
	m.updateCalls++
	claim, ok := m.claims[id]
	if !ok || claim.Status != models.ClaimStatusPending {
		return 0, nil
	}
	claim.Status = next
	claim.OfficerRemarks = remarks
	m.claims[id] = claim
	return 1, nil
}

func newClaimStoreWith(claims ...models.Claim) *mockClaimStore {
	store := &mockClaimStore{claims: make(map[string]models.Claim)}
	for _, c := range claims {
		store.claims[c.ID] = c
	}
	return store
}

func newTestClaimService(store *mockClaimStore) *ClaimService {
	return NewClaimService(store, passthroughEnricher(), nil, zap.NewNop())
}

func TestClaimServiceGetEnriches(t *testing.T) {
	store := newClaimStoreWith(models.Claim{
		ID:       "c1",
		UserID:   "u1",
		Status:   models.ClaimStatusPending,
		ImageRef: "claims/c1/photo.jpg",
	})
	svc := newTestClaimService(store)

	view, err := svc.Get(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Farmer u1", view.FarmerName)
	assert.Equal(t, "https://assets.test/claims/c1/photo.jpg", view.ImageURL)
}

func TestClaimServiceGetNotFound(t *testing.T) {
	svc := newTestClaimService(newClaimStoreWith())

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestClaimServiceApprove(t *testing.T) {
	store := newClaimStoreWith(models.Claim{
		ID:             "c1",
		Status:         models.ClaimStatusPending,
		OfficerRemarks: "draft note",
	})
	svc := newTestClaimService(store)

	require.NoError(t, svc.Approve(context.Background(), "c1"))

	claim := store.claims["c1"]
	assert.Equal(t, models.ClaimStatusApproved, claim.Status)
	assert.Equal(t, "", claim.OfficerRemarks, "approval clears remarks")
}

func TestClaimServiceRejectStoresTrimmedReason(t *testing.T) {
	store := newClaimStoreWith(models.Claim{ID: "c1", Status: models.ClaimStatusPending})
	svc := newTestClaimService(store)

	require.NoError(t, svc.Reject(context.Background(), "c1", "  photos inconsistent with damage  "))

	claim := store.claims["c1"]
	assert.Equal(t, models.ClaimStatusRejected, claim.Status)
	assert.Equal(t, "photos inconsistent with damage", claim.OfficerRemarks)
}

func TestClaimServiceRejectRequiresReason(t *testing.T) {
	store := newClaimStoreWith(models.Claim{ID: "c1", Status: models.ClaimStatusPending})
	svc := newTestClaimService(store)

	for _, reason := range []string{"", "   ", "\t\n"} {
		err := svc.Reject(context.Background(), "c1", reason)
		require.Error(t, err)
		assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	}
	assert.Equal(t, 0, store.updateCalls, "validation fails before any store call")
	assert.Equal(t, models.ClaimStatusPending, store.claims["c1"].Status)
}

func TestClaimServiceResolveStaleClaim(t *testing.T) {
	store := newClaimStoreWith(models.Claim{ID: "c1", Status: models.ClaimStatusApproved})
	svc := newTestClaimService(store)

	err := svc.Reject(context.Background(), "c1", "duplicate submission")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStaleClaim))
	assert.Equal(t, models.ClaimStatusApproved, store.claims["c1"].Status)
}

func TestClaimServiceResolveNotFound(t *testing.T) {
	svc := newTestClaimService(newClaimStoreWith())

	err := svc.Approve(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestClaimServiceListAppliesFilter(t *testing.T) {
	store := newClaimStoreWith(
		models.Claim{ID: "c1", Reason: models.ReasonFlood, Status: models.ClaimStatusPending},
		models.Claim{ID: "c2", Reason: models.ReasonFlood, Status: models.ClaimStatusApproved},
		models.Claim{ID: "c3", Reason: models.ReasonPest, Status: models.ClaimStatusPending},
	)
	svc := newTestClaimService(store)

	views, err := svc.List(context.Background(), models.ClaimFilter{
		Status: string(models.ClaimStatusPending),
		Reason: models.ReasonFlood,
	})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "c1", views[0].ID)

	views, err = svc.List(context.Background(), models.ClaimFilter{})
	require.NoError(t, err)
	assert.Len(t, views, 3)
}

func TestClaimServiceListRejectsUnknownStatus(t *testing.T) {
	svc := newTestClaimService(newClaimStoreWith())

	_, err := svc.List(context.Background(), models.ClaimFilter{Status: "open"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
