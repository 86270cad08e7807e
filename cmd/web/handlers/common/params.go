package common

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireQuery returns a trimmed query parameter or a 400 error.
func RequireQuery(c echo.Context, name string, msg string) (string, error) {
	v := strings.TrimSpace(c.QueryParam(name))
	if v == "" {
		return "", ErrBadRequest(msg)
	}
	return v, nil
}
