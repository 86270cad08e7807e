// Package proxy relays media bytes from an upstream CDN to a client.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// maxRedirects caps how many upstream redirects a single stream follows.
const maxRedirects = 10

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ErrHostNotAllowed is returned for URLs outside the configured host suffixes.
var ErrHostNotAllowed = errors.New("proxy: host not allowed")

// Header names copied from the upstream response.
var passthroughHeaders = []string{
	"Content-Type",
	"Content-Length",
	"Content-Range",
	"Accept-Ranges",
	"Last-Modified",
}

type Streamer struct {
	// AllowedHosts are host suffixes the streamer may contact.
	AllowedHosts []string
	Client       *http.Client
	Timeout      time.Duration
}

func NewStreamer(allowedHosts []string, timeout time.Duration) *Streamer {
	return &Streamer{
		AllowedHosts: allowedHosts,
		Client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 30 * time.Second,
			},
		},
		Timeout: timeout,
	}
}

// Validate parses raw and checks it against the allow-list.
func (s *Streamer) Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("proxy: parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrHostNotAllowed, u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, fmt.Errorf("%w: empty host", ErrHostNotAllowed)
	}
	for _, suffix := range s.AllowedHosts {
		suffix = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(suffix), "."))
		if suffix == "" {
			continue
		}
		if host == suffix || strings.HasSuffix(host, "."+suffix) {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, host)
}

// checkRedirect re-applies the allow-list to every hop so an allowed host
// cannot bounce the request somewhere else.
func (s *Streamer) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("proxy: stopped after %d redirects", maxRedirects)
	}
	if _, err := s.Validate(req.URL.String()); err != nil {
		return fmt.Errorf("proxy: redirect: %w", err)
	}
	return nil
}

// UpstreamError reports a non-2xx status from the upstream server.
type UpstreamError struct {
	Status int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("proxy: upstream returned status %d", e.Status)
}

// Stream fetches raw and writes the upstream body to w. rangeHeader is
// forwarded as-is. prepare is called once the upstream status is known and
// before any header is written, so callers can add their own headers.
func (s *Streamer) Stream(ctx context.Context, w http.ResponseWriter, raw string, rangeHeader string, prepare func(http.Header)) (int64, error) {
	u, err := s.Validate(raw)
	if err != nil {
		return 0, err
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, fmt.Errorf("proxy: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Origin", "https://www.youtube.com")
	req.Header.Set("Referer", "https://www.youtube.com/")
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	var client http.Client
	if s.Client != nil {
		client = *s.Client
	}
	client.CheckRedirect = s.checkRedirect

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("proxy: upstream request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return 0, &UpstreamError{Status: resp.StatusCode}
	}

	h := w.Header()
	for _, name := range passthroughHeaders {
		if v := resp.Header.Get(name); v != "" {
			h.Set(name, v)
		}
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "video/mp4")
	}
	h.Set("Cache-Control", "no-cache")
	if prepare != nil {
		prepare(h)
	}
	w.WriteHeader(resp.StatusCode)

	tw := &trackingWriter{w: w}
	n, err := io.Copy(tw, resp.Body)
	if err != nil {
		// The client going away mid-transfer is routine. Read failures on the
		// upstream side are not.
		if tw.err != nil || errors.Is(ctx.Err(), context.Canceled) {
			slog.Debug("proxy: client disconnected", "host", u.Host, "bytes", humanize.Bytes(uint64(n)))
			return n, nil
		}
		return n, fmt.Errorf("proxy: copy body: %w", err)
	}

	slog.Info("proxy: stream complete",
		"host", u.Host,
		"status", resp.StatusCode,
		"bytes", humanize.Bytes(uint64(n)),
		"took", time.Since(start),
	)
	return n, nil
}

// trackingWriter remembers the first error returned by the client side.
type trackingWriter struct {
	w   io.Writer
	err error
}

func (t *trackingWriter) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if err != nil && t.err == nil {
		t.err = err
	}
	return n, err
}
