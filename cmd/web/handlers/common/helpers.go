package common

import (
	"log/slog"

	"github.com/labstack/echo/v4"
)

// Logger returns slog's default logger tagged with the request id.
func Logger(c echo.Context) *slog.Logger {
	id := c.Response().Header().Get(echo.HeaderXRequestID)
	if id == "" {
		id = c.Request().Header.Get(echo.HeaderXRequestID)
	}
	if id == "" {
		return slog.Default()
	}
	return slog.With("request_id", id)
}
