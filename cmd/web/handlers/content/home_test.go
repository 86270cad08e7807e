package content

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	staticpkg "thirdcoast.systems/shortsdl/cmd/web/internal/web/utils/static"
)

func TestHandleHomePage(t *testing.T) {
	sc, err := staticpkg.NewStaticCache()
	require.NoError(t, err)
	h := HandleHomePage(sc)
	e := echo.New()

	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "<table>")
	require.Contains(t, rec.Body.String(), "/api/download-video")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("If-None-Match", rec.Header().Get("ETag"))
	rec = httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	require.Equal(t, http.StatusNotModified, rec.Code)
}
