package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/live"
	"github.com/agriclaim/review-api/internal/models"
	"github.com/agriclaim/review-api/internal/service"
)

// sseRecorder adds the CloseNotify support gin's streaming path expects.
type sseRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newSSERecorder() *sseRecorder {
	return &sseRecorder{ResponseRecorder: httptest.NewRecorder(), closed: make(chan bool, 1)}
}

func (r *sseRecorder) CloseNotify() <-chan bool {
	return r.closed
}

// staticSource delivers one fixed snapshot on subscribe.
type staticSource struct {
	mu     sync.Mutex
	claims []models.Claim
	filter models.ClaimFilter
}

func (s *staticSource) Subscribe(ctx context.Context, filter models.ClaimFilter, fn live.SnapshotFunc) (func(), error) {
	s.mu.Lock()
	s.filter = filter
	claims := s.claims
	s.mu.Unlock()
	fn(claims, nil)
	return func() {}, nil
}

func TestClaimHandlerStream(t *testing.T) {
	gin.SetMode(gin.TestMode)

	source := &staticSource{claims: []models.Claim{
		{ID: "c1", UserID: "u1", Reason: models.ReasonFlood, Status: models.ClaimStatusPending},
	}}
	assets := service.NewResolver("asset", func(ctx context.Context, ref string) (string, error) {
		return "url://" + ref, nil
	}, zap.NewNop())
	profiles := service.NewResolver("profile", func(ctx context.Context, id string) (string, error) {
		return "Farmer " + id, nil
	}, zap.NewNop())
	enricher := service.NewEnricher(assets, profiles, zap.NewNop())

	factory := func() *service.LiveQueryController {
		return service.NewLiveQueryController(source, enricher, zap.NewNop())
	}
	handler := NewClaimHandler(&claimServiceMock{}, nil, factory, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	w := newSSERecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/claims/stream?status=pending", nil)
	c.Request = req.WithContext(ctx)

	handler.Stream(c)

	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	source.mu.Lock()
	filter := source.filter
	source.mu.Unlock()
	assert.Equal(t, "pending", filter.Status)
	assert.Equal(t, models.FilterAll, filter.Reason)

	body := w.Body.String()
	require.Contains(t, body, "event:snapshot")
	assert.Contains(t, body, "Farmer u1")
	assert.Contains(t, body, `"generation"`)
}

func TestClaimHandlerStreamRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// A nil factory proves the stream is never opened for a bad filter.
	handler := NewClaimHandler(&claimServiceMock{}, nil, nil, nil, nil)

	w := newSSERecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/claims/stream?status=open", nil)
	c.Request = req

	handler.Stream(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid query parameters")
}
