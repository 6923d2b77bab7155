package models

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// ClaimStatus captures the adjudication state of a claim.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// IsValid reports whether the status belongs to the store vocabulary.
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// Damage reason vocabulary as submitted by the mobile clients. The engine
// treats reasons as opaque strings; these constants exist for seeds and docs.
const (
	ReasonFlood   = "Flood"
	ReasonDrought = "Drought"
	ReasonPest    = "Pest"
	ReasonHail    = "Hail"
	ReasonOther   = "Other"
)

// FilterAll disables a filter dimension.
const FilterAll = "all"

// GPS locates the damage site.
type GPS struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Claim is the raw record as persisted by the claim store. Column names
// are a compatibility contract with the ingestion pipeline.
type Claim struct {
	ID             string          `db:"id" json:"id"`
	UserID         string          `db:"user_id" json:"userId"`
	Reason         string          `db:"reason" json:"reason"`
	Status         ClaimStatus     `db:"status" json:"status"`
	SubmittedAt    time.Time       `db:"submitted_at" json:"submittedAt"`
	ImageRef       string          `db:"image_ref" json:"imageRef,omitempty"`
	DocumentRefs   pq.StringArray  `db:"document_refs" json:"documentRefs,omitempty"`
	GPSLatitude    sql.NullFloat64 `db:"gps_latitude" json:"-"`
	GPSLongitude   sql.NullFloat64 `db:"gps_longitude" json:"-"`
	GPS            *GPS            `db:"-" json:"gps,omitempty"`
	OfficerRemarks string          `db:"officer_remarks" json:"officerRemarks,omitempty"`
}

// NormalizeGPS folds the nullable coordinate columns into the GPS field.
// Repositories call this after scanning.
func (c *Claim) NormalizeGPS() {
	if c.GPSLatitude.Valid && c.GPSLongitude.Valid {
		c.GPS = &GPS{Latitude: c.GPSLatitude.Float64, Longitude: c.GPSLongitude.Float64}
	} else {
		c.GPS = nil
	}
}

// ViewClaim is the denormalized projection consumed by the workbench UI.
type ViewClaim struct {
	Claim
	FarmerName   string   `json:"farmerName"`
	ImageURL     string   `json:"imageUrl"`
	DocumentURLs []string `json:"documentUrls,omitempty"`
}

// ClaimFilter constrains the live query. Empty or "all" disables a dimension;
// dimensions compose conjunctively.
type ClaimFilter struct {
	Status string `form:"status" json:"status"`
	Reason string `form:"reason" json:"reason"`
}

// Normalize maps empty dimensions to the explicit "all" marker.
func (f ClaimFilter) Normalize() ClaimFilter {
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.Reason == "" {
		f.Reason = FilterAll
	}
	return f
}

// FiltersStatus reports whether the status dimension is active.
func (f ClaimFilter) FiltersStatus() bool {
	return f.Status != "" && f.Status != FilterAll
}

// FiltersReason reports whether the reason dimension is active.
func (f ClaimFilter) FiltersReason() bool {
	return f.Reason != "" && f.Reason != FilterAll
}

// Matches reports whether a claim satisfies the filter conjunction.
func (f ClaimFilter) Matches(c Claim) bool {
	if f.FiltersStatus() && string(c.Status) != f.Status {
		return false
	}
	if f.FiltersReason() && c.Reason != f.Reason {
		return false
	}
	return true
}
