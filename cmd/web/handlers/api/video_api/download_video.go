package video_api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/api/fileserver"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/common"
	"thirdcoast.systems/shortsdl/internal/proxy"
	"thirdcoast.systems/shortsdl/internal/videoid"
	"thirdcoast.systems/shortsdl/pkg/utils/filename"
	"thirdcoast.systems/shortsdl/pkg/videoinfo"
)

const (
	ProxyModeStream   = "stream"
	ProxyModeTempfile = "tempfile"
)

// FileDownloader downloads a rendition into a directory via yt-dlp.
type FileDownloader interface {
	DownloadFile(ctx context.Context, url string, destDir string, format string, extraArgs ...string) (string, error)
}

type ProxyOptions struct {
	Mode           string
	Format         string
	MaxFilenameLen int
	Timeout        time.Duration
}

// Downloader wires the collaborators HandleDownloadVideo needs.
type Downloader struct {
	Summarizer Summarizer
	Streamer   *proxy.Streamer
	Files      FileDownloader
	Workspace  *fileserver.Workspace
	Options    ProxyOptions
}

// HandleDownloadVideo sends the video bytes as an attachment. The url query
// parameter may be a direct media URL or a YouTube page URL; page URLs are
// resolved first.
func HandleDownloadVideo(d *Downloader) echo.HandlerFunc {
	return func(c echo.Context) error {
		target, err := common.RequireQuery(c, "url", "URL is required")
		if err != nil {
			return common.JSONError(c, http.StatusBadRequest, "URL is required", "")
		}
		title := c.QueryParam("title")

		ctx := c.Request().Context()
		pageURL := ""
		if canon, err := videoid.Canonicalize(target); err == nil {
			pageURL = canon.URL
		}

		useTempfile := d.Options.Mode == ProxyModeTempfile
		if pageURL != "" && !useTempfile {
			// Page URLs are resolved to the direct media URL first.
			summary, err := d.Summarizer.Summarize(ctx, pageURL)
			if err != nil {
				ce := videoinfo.Classify(err)
				return common.JSONError(c, ce.Kind.HTTPStatus(), "Failed to process video", ce.Message())
			}
			target = summary.DownloadURL
			if title == "" {
				title = summary.Title
			}

			// The summary falls back to the page itself when yt-dlp exposed no
			// media URL. That page must never be relayed as video bytes.
			if _, err := videoid.Canonicalize(target); err == nil {
				if d.Files == nil || d.Workspace == nil {
					ce := videoinfo.Errorf(videoinfo.KindNoSuitableFormat, "No direct media URL available for %s", pageURL)
					return common.JSONError(c, ce.Kind.HTTPStatus(), "Failed to process video", ce.Message())
				}
				common.Logger(c).Info("download-video: no direct media url, downloading with yt-dlp", "url", pageURL)
				useTempfile = true
			}
		}
		name := filename.Sanitize(title, d.Options.MaxFilenameLen)
		disposition := fmt.Sprintf("attachment; filename=\"%s.mp4\"", name)

		if useTempfile {
			src := target
			if pageURL != "" {
				src = pageURL
			} else if _, err := d.Streamer.Validate(target); err != nil {
				return common.JSONError(c, http.StatusBadRequest, "Invalid download URL", err.Error())
			}
			return d.serveTempfile(c, src, disposition)
		}
		return d.serveStream(c, target, disposition)
	}
}

func (d *Downloader) serveStream(c echo.Context, target string, disposition string) error {
	log := common.Logger(c)
	_, err := d.Streamer.Stream(c.Request().Context(), c.Response(), target, c.Request().Header.Get("Range"), func(h http.Header) {
		h.Set(echo.HeaderContentDisposition, disposition)
	})
	if err == nil {
		return nil
	}

	log.Warn("download-video: stream failed", "error", err)
	if c.Response().Committed {
		return nil
	}

	var ue *proxy.UpstreamError
	switch {
	case errors.Is(err, proxy.ErrHostNotAllowed):
		return common.JSONError(c, http.StatusBadRequest, "Invalid download URL", err.Error())
	case errors.As(err, &ue):
		return common.JSONError(c, http.StatusBadGateway, "Failed to download video", err.Error())
	default:
		return common.JSONError(c, http.StatusInternalServerError, "Failed to download video", err.Error())
	}
}

func (d *Downloader) serveTempfile(c echo.Context, src string, disposition string) error {
	log := common.Logger(c)

	dir, cleanup, err := d.Workspace.Create()
	if err != nil {
		log.Error("download-video: workspace", "error", err)
		return common.JSONError(c, http.StatusInternalServerError, "Failed to download video", "")
	}
	defer cleanup()

	ctx := c.Request().Context()
	if d.Options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Options.Timeout)
		defer cancel()
	}

	start := time.Now()
	path, err := d.Files.DownloadFile(ctx, src, dir, d.Options.Format)
	if err != nil {
		ce := videoinfo.Classify(err)
		log.Warn("download-video: yt-dlp download failed", "url", src, "kind", ce.Kind, "error", err)
		return common.JSONError(c, http.StatusInternalServerError, "Failed to download video", ce.Message())
	}
	log.Info("download-video: file ready", "url", src, "took", time.Since(start))

	c.Response().Header().Set(echo.HeaderContentDisposition, disposition)
	return fileserver.ServeDiskFile(c, path, "video/mp4", "no-store")
}
