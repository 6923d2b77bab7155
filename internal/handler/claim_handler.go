package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agriclaim/review-api/internal/dto"
	"github.com/agriclaim/review-api/internal/models"
	"github.com/agriclaim/review-api/internal/service"
	appErrors "github.com/agriclaim/review-api/pkg/errors"
	"github.com/agriclaim/review-api/pkg/response"
)

type claimService interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]models.ViewClaim, error)
	Get(ctx context.Context, id string) (*models.ViewClaim, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id, reason string) error
}

type exportService interface {
	Export(ctx context.Context, filter models.ClaimFilter, format string) (*service.ExportFile, error)
}

type streamMetrics interface {
	StreamClientConnected()
	StreamClientDisconnected()
}

// LiveControllerFactory builds one live query controller per stream client.
type LiveControllerFactory func() *service.LiveQueryController

// ClaimHandler exposes the claim review endpoints.
type ClaimHandler struct {
	claims  claimService
	exports exportService
	newLive LiveControllerFactory
	metrics streamMetrics
	logger  *zap.Logger
}

// NewClaimHandler constructs the handler.
func NewClaimHandler(claims claimService, exports exportService, newLive LiveControllerFactory, metrics streamMetrics, logger *zap.Logger) *ClaimHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimHandler{
		claims:  claims,
		exports: exports,
		newLive: newLive,
		metrics: metrics,
		logger:  logger,
	}
}

// List godoc
// @Summary List claims
// @Tags Claims
// @Produce json
// @Param status query string false "pending|approved|rejected|all"
// @Param reason query string false "Damage type or all"
// @Success 200 {object} response.Envelope
// @Router /claims [get]
func (h *ClaimHandler) List(c *gin.Context) {
	var query dto.ClaimQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	claims, err := h.claims.List(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claims, map[string]interface{}{"count": len(claims)})
}

// Get godoc
// @Summary Claim detail
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Router /claims/{id} [get]
func (h *ClaimHandler) Get(c *gin.Context) {
	claim, err := h.claims.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, claim)
}

// Approve godoc
// @Summary Approve a pending claim
// @Tags Claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /claims/{id}/approve [post]
func (h *ClaimHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if err := h.claims.Approve(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "status": models.ClaimStatusApproved})
}

// Reject godoc
// @Summary Reject a pending claim with a remark
// @Tags Claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Param payload body dto.RejectClaimRequest true "Rejection remark"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /claims/{id}/reject [post]
func (h *ClaimHandler) Reject(c *gin.Context) {
	var req dto.RejectClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
		return
	}
	id := c.Param("id")
	if err := h.claims.Reject(c.Request.Context(), id, req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id, "status": models.ClaimStatusRejected})
}

// Export godoc
// @Summary Export the filtered claim list
// @Tags Claims
// @Produce text/csv
// @Param format query string true "csv|pdf"
// @Param status query string false "pending|approved|rejected|all"
// @Param reason query string false "Damage type or all"
// @Success 200 {file} binary
// @Router /claims/export [get]
func (h *ClaimHandler) Export(c *gin.Context) {
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}
	file, err := h.exports.Export(c.Request.Context(), query.Filter(), query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// Stream godoc
// @Summary Live claim snapshots over SSE
// @Tags Claims
// @Produce text/event-stream
// @Param status query string false "pending|approved|rejected|all"
// @Param reason query string false "Damage type or all"
// @Success 200 {string} string "event stream"
// @Router /claims/stream [get]
func (h *ClaimHandler) Stream(c *gin.Context) {
	var query dto.ClaimQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	controller := h.newLive()
	defer controller.Close()

	events := make(chan dto.SnapshotEvent, 16)
	streamErrs := make(chan error, 1)

	controller.Subscribe(func(event dto.SnapshotEvent) {
		// Latest state wins for a slow client: make room, then push.
		for {
			select {
			case events <- event:
				return
			default:
				select {
				case <-events:
				default:
				}
			}
		}
	})
	controller.OnError(func(err error) {
		select {
		case streamErrs <- err:
		default:
		}
	})

	if err := controller.SetFilter(c.Request.Context(), query.Filter()); err != nil {
		response.Error(c, err)
		return
	}

	if h.metrics != nil {
		h.metrics.StreamClientConnected()
		defer h.metrics.StreamClientDisconnected()
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case event := <-events:
			c.SSEvent("snapshot", event)
			return true
		case err := <-streamErrs:
			c.SSEvent("error", appErrors.FromError(err))
			return true
		}
	})
}
