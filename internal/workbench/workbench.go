// Package workbench composes the live claim list, the detail selection and
// the resolve actions into one officer review session.
package workbench

import (
	"context"
	"sync"

	"github.com/agriclaim/review-api/internal/models"
	"github.com/agriclaim/review-api/internal/service"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
)

type claimReviewer interface {
	Get(ctx context.Context, id string) (*models.ViewClaim, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
}

// Workbench is a single officer session. A mutation that succeeds on the
// currently viewed claim closes the detail view; a failed one keeps the
// view open and returns the error for the host to display.
type Workbench struct {
	controller *service.LiveQueryController
	claims     claimReviewer

	mu        sync.Mutex
	selection *service.Selection
}

// New constructs a session around a live controller and the claim service.
func New(controller *service.LiveQueryController, claims claimReviewer) *Workbench {
	return &Workbench{
		controller: controller,
		claims:     claims,
		selection:  service.NewSelection(),
	}
}

// Controller exposes the live query controller for sink registration.
func (w *Workbench) Controller() *service.LiveQueryController {
	return w.controller
}

// SetFilter re-targets the live query.
func (w *Workbench) SetFilter(ctx context.Context, filter models.ClaimFilter) error {
	return w.controller.SetFilter(ctx, filter)
}

// OpenClaim loads the claim detail and marks it as the viewed claim.
func (w *Workbench) OpenClaim(ctx context.Context, id string) (*models.ViewClaim, error) {
	claim, err := w.claims.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.selection.Open(*claim)
	w.mu.Unlock()
	return claim, nil
}

// CloseClaim dismisses the detail view.
func (w *Workbench) CloseClaim() {
	w.mu.Lock()
	w.selection.Close()
	w.mu.Unlock()
}

// Selected returns the claim currently open for detail viewing.
func (w *Workbench) Selected() *models.ViewClaim {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Current()
}

// SetRemarkDraft stores the in-progress rejection remark.
func (w *Workbench) SetRemarkDraft(text string) {
	w.mu.Lock()
	w.selection.SetDraft(text)
	w.mu.Unlock()
}

// RemarkDraft returns the in-progress rejection remark.
func (w *Workbench) RemarkDraft() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.selection.Draft()
}

// Approve resolves the viewed claim and closes the detail view on success.
func (w *Workbench) Approve(ctx context.Context) error {
	id, err := w.viewedClaimID()
	if err != nil {
		return err
	}
	if err := w.claims.Approve(ctx, id); err != nil {
		return err
	}
	w.CloseClaim()
	return nil
}

// Reject resolves the viewed claim with the given remark, falling back to
// the stored draft when the remark is empty. Closes the detail view on
// success.
func (w *Workbench) Reject(ctx context.Context, reason string) error {
	id, err := w.viewedClaimID()
	if err != nil {
		return err
	}
	if reason == "" {
		reason = w.RemarkDraft()
	}
	if err := w.claims.Reject(ctx, id, reason); err != nil {
		return err
	}
	w.CloseClaim()
	return nil
}

// Dispose tears the session down, including its live subscription.
func (w *Workbench) Dispose() {
	w.CloseClaim()
	w.controller.Close()
}

func (w *Workbench) viewedClaimID() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	current := w.selection.Current()
	if current == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "no claim open for review")
	}
	return current.ID, nil
}
