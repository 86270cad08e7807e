package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDownloadFormat asks for a progressive mp4 and falls back to whatever
// yt-dlp considers best.
const DefaultDownloadFormat = "best[ext=mp4]/best"

// DownloadFile downloads a single rendition of url into destDir and returns
// the path of the produced file. The output template is fixed so the result
// can be located from yt-dlp's after_move print:
//
//	<destDir>/<id>.<ext>
func (c *Client) DownloadFile(ctx context.Context, url string, destDir string, format string, extraArgs ...string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("ytdlp: url is required")
	}
	if strings.TrimSpace(destDir) == "" {
		return "", fmt.Errorf("ytdlp: destDir is required")
	}
	if strings.TrimSpace(format) == "" {
		format = DefaultDownloadFormat
	}

	tmpl := filepath.Join(destDir, "%(id)s.%(ext)s")

	args := []string{
		"-o", tmpl,
		"--format", format,
		"--merge-output-format", "mp4",
		"--no-playlist",
		"--no-warnings",
		"--no-colors",
		"--no-part",
		"--print", "after_move:filepath",
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	path := lastLine(string(stdout))
	if path == "" {
		return "", fmt.Errorf("ytdlp: could not determine downloaded file path")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(destDir, filepath.Base(path))
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("ytdlp: downloaded file not found: %w", err)
	}
	return path, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return ""
}
