package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
)

type mockEnrichmentMetrics struct {
	mu       sync.Mutex
	failures int
}

func (m *mockEnrichmentMetrics) EnrichmentFailure() {
	m.mu.Lock()
	m.failures++
	m.mu.Unlock()
}

func TestEnricherDegradesFailedLookupsPerRecord(t *testing.T) {
	assets := NewResolver("asset", func(ctx context.Context, ref string) (string, error) {
		if ref == "claims/broken/photo.jpg" {
			return "", errors.New("object missing")
		}
		return "url://" + ref, nil
	}, zap.NewNop())
	profiles := NewResolver("profile", func(ctx context.Context, id string) (string, error) {
		if id == "u-gone" {
			return "", errors.New("profile deleted")
		}
		return "Farmer " + id, nil
	}, zap.NewNop())

	metrics := &mockEnrichmentMetrics{}
	enricher := NewEnricher(assets, profiles, zap.NewNop(), WithEnrichmentMetrics(metrics))

	views := enricher.EnrichBatch(context.Background(), []models.Claim{
		{ID: "ok", UserID: "u1", ImageRef: "claims/ok/photo.jpg"},
		{ID: "degraded", UserID: "u-gone", ImageRef: "claims/broken/photo.jpg"},
	})

	require.Len(t, views, 2)
	assert.Equal(t, "Farmer u1", views[0].FarmerName)
	assert.Equal(t, "url://claims/ok/photo.jpg", views[0].ImageURL)

	// The degraded record keeps its slot with render defaults.
	assert.Equal(t, "degraded", views[1].ID)
	assert.Equal(t, FarmerNameFallback, views[1].FarmerName)
	assert.Equal(t, "", views[1].ImageURL)

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	assert.Equal(t, 2, metrics.failures)
}

func TestEnricherResolvesDocumentRefs(t *testing.T) {
	assets := NewResolver("asset", func(ctx context.Context, ref string) (string, error) {
		if ref == "claims/c1/doc-2.pdf" {
			return "", errors.New("object missing")
		}
		return "url://" + ref, nil
	}, zap.NewNop())
	profiles := NewResolver("profile", func(ctx context.Context, id string) (string, error) {
		return "Farmer " + id, nil
	}, zap.NewNop())
	enricher := NewEnricher(assets, profiles, zap.NewNop())

	enrichment := enricher.Enrich(context.Background(), models.Claim{
		ID:           "c1",
		UserID:       "u1",
		DocumentRefs: []string{"claims/c1/doc-1.pdf", "claims/c1/doc-2.pdf", "claims/c1/doc-3.pdf"},
	})

	// Failed documents are skipped, the rest keep their order.
	assert.Equal(t, []string{"url://claims/c1/doc-1.pdf", "url://claims/c1/doc-3.pdf"}, enrichment.DocumentURLs)
}
