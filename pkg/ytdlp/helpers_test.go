package ytdlp

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStreamWriter_SplitsOnCRAndLF(t *testing.T) {
	var buf bytes.Buffer
	var lines []string
	w := &streamWriter{
		stream: "stdout",
		callback: func(stream string, line string) {
			lines = append(lines, stream+":"+line)
		},
		buffer: &buf,
	}

	_, err := w.Write([]byte("a\rb\nc\r\nd"))
	require.NoError(t, err)

	// No delimiter after trailing "d" yet.
	require.Equal(t, []string{"stdout:a", "stdout:b", "stdout:c"}, lines)

	_, err = w.Write([]byte("\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"stdout:a", "stdout:b", "stdout:c", "stdout:d"}, lines)

	require.Equal(t, "a\rb\nc\r\nd\n", buf.String())
}

func TestCreateTempCookiesFile_WritesContent(t *testing.T) {
	path, err := createTempCookiesFile("cookie-data")
	require.NoError(t, err)
	require.NotEmpty(t, path)
	defer os.Remove(path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "cookie-data", string(b))
}

func TestWrapExecError_TrimsOutput(t *testing.T) {
	err := wrapExecError("yt-dlp", []string{"--version"}, []byte(" out \n"), []byte(" err \n"), errors.New("boom"))
	var ee *ExecError
	require.ErrorAs(t, err, &ee)
	require.Equal(t, "yt-dlp", ee.Cmd)
	require.Equal(t, []string{"--version"}, ee.Args)
	require.Equal(t, 0, ee.ExitCode)
	require.Equal(t, "out", ee.Stdout)
	require.Equal(t, "err", ee.Stderr)
	require.Equal(t, "boom", ee.Cause.Error())
	require.Contains(t, ee.Error(), "yt-dlp")
}

func TestExecError_Message(t *testing.T) {
	ee := &ExecError{Stderr: "WARNING: something\nERROR: [youtube] abc: Video unavailable\n"}
	require.Equal(t, "[youtube] abc: Video unavailable", ee.Message())

	ee = &ExecError{Stderr: "plain failure"}
	require.Equal(t, "plain failure", ee.Message())

	ee = &ExecError{Cause: errors.New("exec: not found")}
	require.Equal(t, "exec: not found", ee.Message())
}

func TestExecError_IsUnavailable(t *testing.T) {
	cases := map[string]bool{
		"ERROR: [youtube] abc: Video unavailable":                                 true,
		"ERROR: [youtube] abc: Private video. Sign in if you've been granted":     true,
		"ERROR: [youtube] abc: Sign in to confirm your age":                       true,
		"ERROR: [youtube] abc: This video has been removed by the uploader":       true,
		"ERROR: [youtube] abc: Unable to download webpage: HTTP Error 503":        false,
		"ERROR: unable to extract initial player response; please report this bug": false,
	}
	for stderr, want := range cases {
		ee := &ExecError{Stderr: stderr}
		require.Equal(t, want, ee.IsUnavailable(), stderr)
	}
}

func TestClient_PathOrDefault(t *testing.T) {
	c := &Client{Path: "   "}
	require.Equal(t, "yt-dlp", c.PathOrDefault())

	c.Path = "/usr/local/bin/yt-dlp"
	require.Equal(t, "/usr/local/bin/yt-dlp", c.PathOrDefault())
}
