package workbench

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriclaim/review-api/internal/models"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

type mockReviewer struct {
	claims        map[string]models.ViewClaim
	approveErr    error
	rejectErr     error
	lastRejectFor string
	lastReason    string
}

func (m *mockReviewer) Get(ctx context.Context, id string) (*models.ViewClaim, error) {
	claim, ok := m.claims[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	return &claim, nil
}

func (m *mockReviewer) Approve(ctx context.Context, id string) error {
	return m.approveErr
}

func (m *mockReviewer) Reject(ctx context.Context, id, reason string) error {
	m.lastRejectFor = id
	m.lastReason = reason
	return m.rejectErr
}

func newTestWorkbench(reviewer *mockReviewer) *Workbench {
	return New(nil, reviewer)
}

func pendingClaim(id string) models.ViewClaim {
	return models.ViewClaim{
		Claim:      models.Claim{ID: id, Status: models.ClaimStatusPending},
		FarmerName: "Asha Patel",
	}
}

func TestWorkbenchOpenAndCloseClaim(t *testing.T) {
	reviewer := &mockReviewer{claims: map[string]models.ViewClaim{"c1": pendingClaim("c1")}}
	wb := newTestWorkbench(reviewer)

	claim, err := wb.OpenClaim(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", claim.ID)
	require.NotNil(t, wb.Selected())
	assert.Equal(t, "c1", wb.Selected().ID)

	wb.CloseClaim()
	assert.Nil(t, wb.Selected())
}

func TestWorkbenchOpenClaimNotFound(t *testing.T) {
	wb := newTestWorkbench(&mockReviewer{})

	_, err := wb.OpenClaim(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
	assert.Nil(t, wb.Selected())
}

func TestWorkbenchApproveClosesDetailView(t *testing.T) {
	reviewer := &mockReviewer{claims: map[string]models.ViewClaim{"c1": pendingClaim("c1")}}
	wb := newTestWorkbench(reviewer)

	_, err := wb.OpenClaim(context.Background(), "c1")
	require.NoError(t, err)

	require.NoError(t, wb.Approve(context.Background()))
	assert.Nil(t, wb.Selected(), "successful approval closes the detail view")
}

func TestWorkbenchFailedMutationKeepsViewOpen(t *testing.T) {
	reviewer := &mockReviewer{
		claims:    map[string]models.ViewClaim{"c1": pendingClaim("c1")},
		rejectErr: appErrors.ErrStaleClaim,
	}
	wb := newTestWorkbench(reviewer)

	_, err := wb.OpenClaim(context.Background(), "c1")
	require.NoError(t, err)

	err = wb.Reject(context.Background(), "withdrawn by farmer")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStaleClaim))
	require.NotNil(t, wb.Selected(), "failed mutation keeps the claim open")
	assert.Equal(t, "c1", wb.Selected().ID)
}

func TestWorkbenchRejectFallsBackToDraft(t *testing.T) {
	reviewer := &mockReviewer{claims: map[string]models.ViewClaim{"c1": pendingClaim("c1")}}
	wb := newTestWorkbench(reviewer)

	_, err := wb.OpenClaim(context.Background(), "c1")
	require.NoError(t, err)
	wb.SetRemarkDraft("documents illegible")

	require.NoError(t, wb.Reject(context.Background(), ""))
	assert.Equal(t, "c1", reviewer.lastRejectFor)
	assert.Equal(t, "documents illegible", reviewer.lastReason)
	assert.Nil(t, wb.Selected())
}

func TestWorkbenchMutationWithoutOpenClaim(t *testing.T) {
	wb := newTestWorkbench(&mockReviewer{})

	err := wb.Approve(context.Background())
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	err = wb.Reject(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}
