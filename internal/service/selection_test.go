package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agriclaim/review-api/internal/models"
)

func TestSelectionStartsClosed(t *testing.T) {
	sel := NewSelection()

	assert.Nil(t, sel.Current())
	assert.False(t, sel.IsViewing("anything"))
	assert.Equal(t, "", sel.Draft())
}

func TestSelectionOpenSwitchesClaims(t *testing.T) {
	sel := NewSelection()

	sel.Open(models.ViewClaim{Claim: models.Claim{ID: "c1"}})
	sel.SetDraft("half-typed reason")

	sel.Open(models.ViewClaim{Claim: models.Claim{ID: "c2"}})

	require.NotNil(t, sel.Current())
	assert.Equal(t, "c2", sel.Current().ID)
	assert.True(t, sel.IsViewing("c2"))
	assert.False(t, sel.IsViewing("c1"))
	assert.Equal(t, "", sel.Draft(), "switching claims discards the stale draft")
}

func TestSelectionCloseDiscardsDraft(t *testing.T) {
	sel := NewSelection()
	sel.Open(models.ViewClaim{Claim: models.Claim{ID: "c1"}})
	sel.SetDraft("late paperwork")

	sel.Close()

	assert.Nil(t, sel.Current())
	assert.Equal(t, "", sel.Draft())
}

func TestSelectionIgnoresDraftWhenClosed(t *testing.T) {
	sel := NewSelection()

	sel.SetDraft("orphan text")

	assert.Equal(t, "", sel.Draft())
}
