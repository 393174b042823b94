package controller

import (
	"errors"
	"net/http"

	"github.com/giftwish/giftwish-backend/internal/app/service"
	apperrors "github.com/giftwish/giftwish-backend/internal/errors"
	"github.com/giftwish/giftwish-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

type PreviewController struct {
	previewService service.PreviewService
}

func NewPreviewController(previewService service.PreviewService) *PreviewController {
	return &PreviewController{
		previewService: previewService,
	}
}

// GetPreview scrapes title/image/price metadata from a product page so the
// owner can prefill an item form
// GET /api/v1/preview?url=...
func (ctrl *PreviewController) GetPreview(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	pageURL := c.Query("url")
	if pageURL == "" {
		apperrors.BadRequest(c, apperrors.ValidationInvalidURL, "the url query parameter is required")
		return
	}

	p, err := ctrl.previewService.Fetch(c.Request.Context(), pageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPreviewURL):
			apperrors.BadRequest(c, apperrors.ValidationInvalidURL, "the url must be absolute http or https")
		case errors.Is(err, service.ErrPreviewFetchFailed), errors.Is(err, service.ErrPreviewNotHTML):
			// the remote site failing is not our fault; 502 tells the
			// client to fill the form by hand
			apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.PreviewFetchFailed, "could not fetch the page")
		default:
			log.Error("Failed to build link preview", err, map[string]interface{}{
				"url": pageURL,
			})
			apperrors.InternalError(c, "failed to build the preview")
		}
		return
	}

	c.JSON(http.StatusOK, p)
}
