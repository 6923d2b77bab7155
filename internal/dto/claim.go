package dto

import "github.com/agriclaim/review-api/internal/models"

// RejectClaimRequest carries the officer's rejection remark.
type RejectClaimRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ClaimQuery mirrors the supported listing filters.
type ClaimQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected all"`
	Reason string `form:"reason"`
}

// Filter converts the query into a normalized domain filter.
func (q ClaimQuery) Filter() models.ClaimFilter {
	return models.ClaimFilter{Status: q.Status, Reason: q.Reason}.Normalize()
}

// ExportQuery adds the output format to the listing filters.
type ExportQuery struct {
	ClaimQuery
	Format string `form:"format"`
}

// SnapshotEvent is the payload of one live stream publish.
type SnapshotEvent struct {
	Generation uint64             `json:"generation"`
	Claims     []models.ViewClaim `json:"claims"`
}
