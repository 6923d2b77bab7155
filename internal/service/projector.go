package service

import "github.com/agriclaim/review-api/internal/models"

// FarmerNameFallback renders when the profile lookup missed or failed.
const FarmerNameFallback = "N/A"

// Enrichment carries the resolved secondary data for one claim.
type Enrichment struct {
	FarmerName   string
	ImageURL     string
	DocumentURLs []string
}

// ProjectClaim builds the denormalized view record from a raw claim and its
// enrichment. Pure: zero-value enrichment fields fall back to the defaults
// the workbench renders for missing data.
func ProjectClaim(raw models.Claim, e Enrichment) models.ViewClaim {
	view := models.ViewClaim{
		Claim:        raw,
		FarmerName:   e.FarmerName,
		ImageURL:     e.ImageURL,
		DocumentURLs: e.DocumentURLs,
	}
	if view.FarmerName == "" {
		view.FarmerName = FarmerNameFallback
	}
	return view
}
