package ytdlp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// streamWriter wraps an io.Writer and calls a callback for each line.
type streamWriter struct {
	stream   string
	callback func(stream string, line string)
	buffer   *bytes.Buffer
	pending  []byte
}

func (w *streamWriter) Write(p []byte) (n int, err error) {
	if w.buffer != nil {
		w.buffer.Write(p)
	}

	w.pending = append(w.pending, p...)

	// yt-dlp progress output uses carriage returns to redraw the same console
	// line, so both \r and \n count as line boundaries.
	for {
		idx := bytes.IndexAny(w.pending, "\r\n")
		if idx < 0 {
			break
		}

		line := string(w.pending[:idx])

		consume := 1
		if w.pending[idx] == '\r' && idx+1 < len(w.pending) && w.pending[idx+1] == '\n' {
			consume = 2
		}
		w.pending = w.pending[idx+consume:]

		if w.callback != nil {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" {
				w.callback(w.stream, trimmed)
			}
		}
	}

	return len(p), nil
}

// flush reports a trailing line that was not terminated by a newline.
func (w *streamWriter) flush() {
	line := strings.TrimSpace(string(w.pending))
	w.pending = nil
	if line != "" && w.callback != nil {
		w.callback(w.stream, line)
	}
}

// ExecError is returned when a yt-dlp invocation exits unsuccessfully.
type ExecError struct {
	Cmd      string
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Cause    error
}

func (e *ExecError) Error() string {
	cmdline := strings.TrimSpace(e.Cmd + " " + strings.Join(e.Args, " "))
	if e.ExitCode != 0 {
		return fmt.Sprintf("ytdlp: command failed (exit %d): %s", e.ExitCode, cmdline)
	}
	return fmt.Sprintf("ytdlp: command failed: %s", cmdline)
}

func (e *ExecError) Unwrap() error { return e.Cause }

// Message returns the most useful human-readable line yt-dlp printed.
// yt-dlp reports failures as "ERROR: [extractor] id: reason" on stderr.
func (e *ExecError) Message() string {
	lines := strings.Split(e.Stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.TrimSpace(lines[i])
		if strings.HasPrefix(l, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(l, "ERROR:"))
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Error()
}

var unavailableMarkers = []string{
	"VIDEO UNAVAILABLE",
	"PRIVATE VIDEO",
	"THIS VIDEO IS PRIVATE",
	"HAS BEEN REMOVED",
	"BEEN TERMINATED",
	"VIDEO IS NO LONGER AVAILABLE",
	"NOT AVAILABLE IN YOUR COUNTRY",
	"AGE-RESTRICTED",
	"AGE RESTRICTED",
	"CONFIRM YOUR AGE",
	"INAPPROPRIATE FOR SOME USERS",
	"SIGN IN TO CONFIRM",
	"MEMBERS-ONLY",
}

// IsUnavailable reports whether yt-dlp rejected the video itself (private,
// deleted, geo-blocked or age-restricted) rather than failing to run.
func (e *ExecError) IsUnavailable() bool {
	s := strings.ToUpper(e.Stderr + " " + e.Stdout)
	for _, m := range unavailableMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

type Client struct {
	// Path to yt-dlp executable. Defaults to "yt-dlp" (PATH lookup).
	Path string

	// Cookies is cookies.txt content. When set, a temporary cookies file is
	// written for each command and removed afterwards.
	Cookies string

	// ExtraArgs are always appended before per-call args.
	ExtraArgs []string

	// LogCallback is called for each line of stdout/stderr output.
	// If nil, output is only buffered.
	LogCallback func(stream string, line string)

	execFn func(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

func New() *Client {
	return &Client{Path: "yt-dlp"}
}

// exec does not mutate the client, so one Client can serve concurrent requests.
func (c *Client) exec(ctx context.Context, args ...string) (stdout []byte, stderr []byte, err error) {
	name := c.PathOrDefault()

	fullArgs := make([]string, 0, len(c.ExtraArgs)+len(args)+3)
	fullArgs = append(fullArgs, c.ExtraArgs...)
	if c.LogCallback != nil {
		fullArgs = append(fullArgs, "--newline")
	}

	if c.Cookies != "" {
		cookiesFile, err := createTempCookiesFile(c.Cookies)
		if err != nil {
			slog.Error("ytdlp: failed to create temp cookies file", "error", err)
			return nil, nil, fmt.Errorf("failed to create temp cookies file: %w", err)
		}
		defer os.Remove(cookiesFile)
		fullArgs = append(fullArgs, "--cookies", cookiesFile)
	}

	fullArgs = append(fullArgs, args...)

	var outBuf, errBuf bytes.Buffer
	var outW, errW io.Writer = &outBuf, &errBuf
	if c.LogCallback != nil {
		sw := &streamWriter{stream: "stdout", callback: c.LogCallback, buffer: &outBuf}
		ew := &streamWriter{stream: "stderr", callback: c.LogCallback, buffer: &errBuf}
		defer sw.flush()
		defer ew.flush()
		outW, errW = sw, ew
	}

	if c.execFn != nil {
		stdout, stderr, err = c.execFn(ctx, name, fullArgs...)
		_, _ = outW.Write(stdout)
		_, _ = errW.Write(stderr)
		return outBuf.Bytes(), errBuf.Bytes(), err
	}

	slog.Debug("ytdlp: executing command", "cmd", name, "args", fullArgs)
	cmd := exec.CommandContext(ctx, name, fullArgs...)
	cmd.Stdout = outW
	cmd.Stderr = errW

	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Version returns `yt-dlp --version`.
func (c *Client) Version(ctx context.Context) (string, error) {
	args := []string{"--version"}
	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return "", wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// Info is a light wrapper over yt-dlp JSON output. It models only the fields
// callers need for logging; the full JSON is preserved in Raw.
type Info struct {
	ID         string          `json:"id"`
	Title      string          `json:"title"`
	WebpageURL string          `json:"webpage_url"`
	Extractor  string          `json:"extractor"`
	Duration   float64         `json:"duration"`
	Raw        json.RawMessage `json:"-"`
}

// GetInfo runs yt-dlp in metadata-only mode and parses its JSON output.
// An empty format leaves format selection to yt-dlp.
func (c *Client) GetInfo(ctx context.Context, url string, format string, extraArgs ...string) (*Info, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("ytdlp: url is required")
	}

	args := []string{"--dump-single-json", "--skip-download", "--no-warnings", "--no-playlist"}
	if f := strings.TrimSpace(format); f != "" {
		args = append(args, "--format", f)
	}
	args = append(args, extraArgs...)
	args = append(args, url)

	stdout, stderr, err := c.exec(ctx, args...)
	if err != nil {
		return nil, wrapExecError(c.PathOrDefault(), args, stdout, stderr, err)
	}

	return ParseInfo(stdout)
}

// ParseInfo decodes a --dump-single-json document.
func ParseInfo(data []byte) (*Info, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return nil, fmt.Errorf("ytdlp: empty json output")
	}
	info := &Info{Raw: append([]byte(nil), raw...)}
	if err := json.Unmarshal(raw, info); err != nil {
		return nil, fmt.Errorf("ytdlp: parse json: %w", err)
	}
	return info, nil
}

// PathOrDefault returns the configured path or "yt-dlp" if unset.
func (c *Client) PathOrDefault() string {
	if strings.TrimSpace(c.Path) == "" {
		return "yt-dlp"
	}
	return c.Path
}

func wrapExecError(cmd string, args []string, stdout []byte, stderr []byte, cause error) error {
	exitCode := 0
	var ee *exec.ExitError
	if errors.As(cause, &ee) {
		exitCode = ee.ExitCode()
	}

	return &ExecError{
		Cmd:      cmd,
		Args:     args,
		ExitCode: exitCode,
		Stdout:   strings.TrimSpace(string(stdout)),
		Stderr:   strings.TrimSpace(string(stderr)),
		Cause:    cause,
	}
}

// createTempCookiesFile creates a temporary file with the cookies content.
func createTempCookiesFile(content string) (string, error) {
	tmpFile, err := os.CreateTemp("", "ytdlp-cookies-*.txt")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	if _, err := tmpFile.WriteString(content); err != nil {
		os.Remove(tmpFile.Name())
		return "", err
	}

	return tmpFile.Name(), nil
}
