// package video_api provides video-related API handlers.
package video_api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/common"
	"thirdcoast.systems/shortsdl/pkg/videoinfo"
)

// Summarizer turns a user-supplied URL into a normalized summary.
type Summarizer interface {
	Summarize(ctx context.Context, rawURL string) (*videoinfo.Summary, error)
}

type downloadRequest struct {
	URL string `json:"url" form:"url" validate:"required"`
}

var validate = validator.New()

// HandleDownload resolves the posted URL into video metadata.
func HandleDownload(svc Summarizer) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req downloadRequest
		if err := c.Bind(&req); err != nil {
			common.Logger(c).Debug("download: bind failed", "error", err)
		}
		req.URL = strings.TrimSpace(req.URL)
		if err := validate.Struct(req); err != nil {
			return common.JSONError(c, http.StatusBadRequest, "URL is required", "")
		}

		summary, err := svc.Summarize(c.Request().Context(), req.URL)
		if err != nil {
			ce := videoinfo.Classify(err)
			common.Logger(c).Warn("download: failed to process video", "url", req.URL, "kind", ce.Kind, "error", err)
			return common.JSONError(c, ce.Kind.HTTPStatus(), "Failed to process video", ce.Message())
		}

		return c.JSON(http.StatusOK, summary)
	}
}
