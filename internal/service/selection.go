package service

import "github.com/agriclaim/review-api/internal/models"

// Selection tracks which claim is open in the detail view and the officer's
// in-progress rejection remark. Pure local state, no I/O: the workbench
// serializes access per officer session.
type Selection struct {
	current *models.ViewClaim
	draft   string
}

// NewSelection starts in the closed state.
func NewSelection() *Selection {
	return &Selection{}
}

// Open switches to viewing the given claim and clears any stale draft.
func (s *Selection) Open(claim models.ViewClaim) {
	s.current = &claim
	s.draft = ""
}

// Close returns to the closed state and discards the draft.
func (s *Selection) Close() {
	s.current = nil
	s.draft = ""
}

// Current returns the claim being viewed, or nil when closed.
func (s *Selection) Current() *models.ViewClaim {
	return s.current
}

// IsViewing reports whether the given claim is the open one.
func (s *Selection) IsViewing(claimID string) bool {
	return s.current != nil && s.current.ID == claimID
}

// SetDraft stores the in-progress rejection remark.
func (s *Selection) SetDraft(text string) {
	if s.current != nil {
		s.draft = text
	}
}

// Draft returns the in-progress rejection remark.
func (s *Selection) Draft() string {
	return s.draft
}
