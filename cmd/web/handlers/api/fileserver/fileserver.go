// Package fileserver stages yt-dlp downloads on local disk and serves them.
package fileserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const dirPrefix = "shortsdl-"

// Workspace hands out per-request scratch directories under Root.
type Workspace struct {
	Root string
}

// NewWorkspace uses os.TempDir() when root is empty.
func NewWorkspace(root string) *Workspace {
	if strings.TrimSpace(root) == "" {
		root = os.TempDir()
	}
	return &Workspace{Root: root}
}

// Create makes a fresh directory and returns a cleanup func that removes it
// and everything in it.
func (w *Workspace) Create() (string, func(), error) {
	dir := filepath.Join(w.Root, dirPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", func() {}, fmt.Errorf("create workspace: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			slog.Warn("fileserver: failed to remove workspace", "dir", dir, "error", err)
		}
	}
	return dir, cleanup, nil
}

// weakETag is derived from size and modtime.
func weakETag(info os.FileInfo) string {
	return fmt.Sprintf(`W/"%x-%x"`, info.ModTime().Unix(), info.Size())
}

// ServeDiskFile serves absPath with conditional request and Range support.
func ServeDiskFile(c echo.Context, absPath string, contentType string, cacheControl string) error {
	info, err := os.Stat(absPath)
	if err != nil || info.IsDir() {
		return echo.ErrNotFound
	}

	etag := weakETag(info)
	if inm := c.Request().Header.Get("If-None-Match"); inm != "" && strings.TrimSpace(inm) == etag {
		return c.NoContent(http.StatusNotModified)
	}

	h := c.Response().Header()
	h.Set(echo.HeaderCacheControl, cacheControl)
	h.Set("ETag", etag)
	if contentType != "" {
		h.Set(echo.HeaderContentType, contentType)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return echo.ErrNotFound
	}
	defer f.Close()

	// http.ServeContent handles Range and sets Last-Modified.
	http.ServeContent(c.Response(), c.Request(), filepath.Base(absPath), info.ModTime().Truncate(time.Second), f)
	return nil
}
