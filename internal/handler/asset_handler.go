package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	appErrors "github.com/agriclaim/review-api/pkg/errors"
	"github.com/agriclaim/review-api/pkg/response"
)

type assetOpener interface {
	Open(token string) (*os.File, error)
}

// AssetHandler serves claim photos and documents behind signed tokens.
type AssetHandler struct {
	store assetOpener
}

// NewAssetHandler constructs the handler.
func NewAssetHandler(store assetOpener) *AssetHandler {
	return &AssetHandler{store: store}
}

// Download godoc
// @Summary Download an asset via its signed token
// @Tags Assets
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /assets/{token} [get]
func (h *AssetHandler) Download(c *gin.Context) {
	file, err := h.store.Open(c.Param("token"))
	if err != nil {
		// Invalid, expired, or dangling tokens all render as not found.
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	defer file.Close() //nolint:errcheck

	stat, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	http.ServeContent(c.Writer, c.Request, filepath.Base(stat.Name()), stat.ModTime(), file)
}
