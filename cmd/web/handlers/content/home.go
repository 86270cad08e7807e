package content

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/shortsdl/cmd/web/templates"
	"thirdcoast.systems/shortsdl/pkg/utils/markdown"
)

const usageFile = "usage.md"

// HandleHomePage renders the embedded usage document.
func HandleHomePage(sc *static.StaticCache) echo.HandlerFunc {
	var (
		once    sync.Once
		body    template.HTML
		loadErr error
	)
	return func(c echo.Context) error {
		once.Do(func() {
			src, err := sc.ReadFile(usageFile)
			if err != nil {
				loadErr = err
				return
			}
			body = markdown.NewMarkdown(string(src)).Render()
		})
		if loadErr != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "usage page unavailable").SetInternal(loadErr)
		}

		if ci, ok := sc.Lookup(usageFile); ok {
			if static.NotModified(c.Request(), ci) {
				return c.NoContent(http.StatusNotModified)
			}
			c.Response().Header().Set("ETag", ci.ETag)
		}
		c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
		c.Response().WriteHeader(http.StatusOK)
		return templates.Usage("shortsdl", body).Render(c.Request().Context(), c.Response())
	}
}
