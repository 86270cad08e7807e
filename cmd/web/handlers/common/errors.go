package common

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/pkg/utils/markdown"
)

// ErrorBody is the JSON shape of every API error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// JSONError writes an ErrorBody. details are stripped of markup since they
// often carry yt-dlp or upstream output verbatim.
func JSONError(c echo.Context, status int, msg string, details string) error {
	return c.JSON(status, ErrorBody{Error: msg, Details: markdown.StripTags(details)})
}

// ErrBadRequest returns a 400 Bad Request error.
func ErrBadRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
