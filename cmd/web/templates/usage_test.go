package templates

import (
	"bytes"
	"context"
	"html/template"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	err := Usage("a <b> & c", template.HTML("<p>hi</p>")).Render(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "<!doctype html>")
	require.Contains(t, out, "<title>a &lt;b&gt; &amp; c</title>")
	require.Contains(t, out, "<body><p>hi</p></body>")
}
