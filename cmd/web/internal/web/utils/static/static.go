package static

import (
	"crypto/sha256"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/static"
)

// CachedFileInfo holds metadata for a static file used in HTTP cache headers.
type CachedFileInfo struct {
	ETag         string
	Size         int64
	LastModified time.Time
}

// StaticCache manages in-memory metadata for static assets.
type StaticCache struct {
	fileLock sync.RWMutex
	entries  map[string]CachedFileInfo
	fs       fs.FS
}

// NewStaticCache scans the embedded filesystem and computes ETag and Last-Modified for each file.
func NewStaticCache() (*StaticCache, error) {
	return newStaticCache(static.FS)
}

func newStaticCache(fsys fs.FS) (*StaticCache, error) {
	c := &StaticCache{
		entries: make(map[string]CachedFileInfo),
		fs:      fsys,
	}

	c.fileLock.Lock()
	defer c.fileLock.Unlock()

	// Embedded files carry no modtime.
	started := time.Now().UTC().Truncate(time.Second)

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		f, err := fsys.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		h := sha256.New()
		n, err := io.Copy(h, f)
		if err != nil {
			return err
		}

		c.entries[path] = CachedFileInfo{
			ETag:         fmt.Sprintf("\"%x\"", h.Sum(nil)),
			Size:         n,
			LastModified: started,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the cached metadata for path.
func (s *StaticCache) Lookup(path string) (CachedFileInfo, bool) {
	s.fileLock.RLock()
	defer s.fileLock.RUnlock()
	ci, ok := s.entries[path]
	return ci, ok
}

// NotModified reports whether the request's validators match ci.
func NotModified(r *http.Request, ci CachedFileInfo) bool {
	if inm := r.Header.Get("If-None-Match"); inm != "" {
		return inm == ci.ETag
	}
	if ims := r.Header.Get(echo.HeaderIfModifiedSince); ims != "" {
		if t, err := time.Parse(http.TimeFormat, ims); err == nil && !ci.LastModified.After(t) {
			return true
		}
	}
	return false
}

// ReadFile returns the content of an embedded file.
func (s *StaticCache) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(s.fs, path)
}

func (s *StaticCache) ServeStaticFile(prefix string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.TrimPrefix(c.Request().URL.Path, prefix)

		ci, ok := s.Lookup(path)
		if !ok {
			return echo.ErrNotFound
		}
		if NotModified(c.Request(), ci) {
			return c.NoContent(http.StatusNotModified)
		}

		f, err := s.fs.Open(path)
		if err != nil {
			return echo.ErrNotFound
		}
		defer f.Close()

		h := c.Response().Header()
		h.Set(echo.HeaderCacheControl, "public, max-age=3600, stale-while-revalidate=300") // 1 hour
		h.Set("ETag", ci.ETag)
		h.Set(echo.HeaderLastModified, ci.LastModified.Format(http.TimeFormat))

		ext := filepath.Ext(path)
		contentType := mime.TypeByExtension(ext)
		if ext == ".md" {
			contentType = "text/markdown; charset=utf-8"
		}
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		return c.Stream(http.StatusOK, contentType, f)
	}
}
