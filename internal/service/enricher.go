package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/models"
)

// EnrichmentMetricsRecorder counts degraded per-record enrichments.
type EnrichmentMetricsRecorder interface {
	EnrichmentFailure()
}

// Enricher resolves the secondary data for claims through the asset and
// profile resolvers. Resolution failures degrade the single record to its
// render defaults and never drop it or abort sibling lookups.
type Enricher struct {
	assets   *Resolver
	profiles *Resolver
	logger   *zap.Logger
	metrics  EnrichmentMetricsRecorder
}

// EnricherOption configures the enricher.
type EnricherOption func(*Enricher)

// WithEnrichmentMetrics attaches a failure counter.
func WithEnrichmentMetrics(rec EnrichmentMetricsRecorder) EnricherOption {
	return func(e *Enricher) {
		e.metrics = rec
	}
}

// NewEnricher constructs an enricher over the two resolvers.
func NewEnricher(assets, profiles *Resolver, logger *zap.Logger, opts ...EnricherOption) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Enricher{assets: assets, profiles: profiles, logger: logger}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Enrich resolves one claim's image, profile and document references.
func (e *Enricher) Enrich(ctx context.Context, claim models.Claim) Enrichment {
	var enrichment Enrichment

	if claim.UserID != "" {
		name, err := e.profiles.Resolve(ctx, claim.UserID)
		if err != nil {
			e.recordFailure("profile", claim.ID, err)
		} else {
			enrichment.FarmerName = name
		}
	}

	if claim.ImageRef != "" {
		url, err := e.assets.Resolve(ctx, claim.ImageRef)
		if err != nil {
			e.recordFailure("image", claim.ID, err)
		} else {
			enrichment.ImageURL = url
		}
	}

	for _, ref := range claim.DocumentRefs {
		url, err := e.assets.Resolve(ctx, ref)
		if err != nil {
			e.recordFailure("document", claim.ID, err)
			continue
		}
		enrichment.DocumentURLs = append(enrichment.DocumentURLs, url)
	}

	return enrichment
}

// EnrichBatch projects a snapshot batch, resolving every record in
// parallel and returning only after all per-record enrichments settle.
func (e *Enricher) EnrichBatch(ctx context.Context, claims []models.Claim) []models.ViewClaim {
	views := make([]models.ViewClaim, len(claims))

	var wg sync.WaitGroup
	for i := range claims {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			views[i] = ProjectClaim(claims[i], e.Enrich(ctx, claims[i]))
		}(i)
	}
	wg.Wait()

	return views
}

func (e *Enricher) recordFailure(kind, claimID string, err error) {
	if e.metrics != nil {
		e.metrics.EnrichmentFailure()
	}
	e.logger.Debug("enrichment degraded",
		zap.String("kind", kind),
		zap.String("claim_id", claimID),
		zap.Error(err),
	)
}
