package videoinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/shortsdl/pkg/ytdlp"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{name: "classified passthrough", err: Errorf(KindInvalidURL, "bad"), want: KindInvalidURL},
		{name: "wrapped classified", err: fmt.Errorf("ctx: %w", ErrNoSuitableFormat), want: KindNoSuitableFormat},
		{name: "unavailable", err: &ytdlp.ExecError{Stderr: "ERROR: [youtube] x: Video unavailable"}, want: KindVideoUnavailable},
		{name: "age restricted", err: &ytdlp.ExecError{Stderr: "ERROR: [youtube] x: Sign in to confirm your age"}, want: KindVideoUnavailable},
		{name: "other exec failure", err: &ytdlp.ExecError{Stderr: "ERROR: HTTP Error 503"}, want: KindExtractionFailed},
		{name: "timeout", err: context.DeadlineExceeded, want: KindExtractionFailed},
		{name: "unknown", err: errors.New("boom"), want: KindExtractionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			require.NotNil(t, got)
			require.Equal(t, tt.want, got.Kind)
		})
	}

	require.Nil(t, Classify(nil))
}

func TestClassify_PassesExtractionMessageThrough(t *testing.T) {
	got := Classify(&ytdlp.ExecError{Stderr: "ERROR: Unsupported URL: https://example.com"})
	require.Equal(t, "Unsupported URL: https://example.com", got.Message())
	require.ErrorIs(t, got, ErrExtractionFailed)
}

func TestError_MessageDefaults(t *testing.T) {
	require.Equal(t, "Invalid YouTube URL", ErrInvalidURL.Message())
	require.Equal(t, "custom", Errorf(KindInvalidURL, "custom").Message())
	require.Equal(t, "InvalidUrl: custom", Errorf(KindInvalidURL, "custom").Error())
}

func TestKind_HTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, KindInvalidURL.HTTPStatus())
	for _, k := range []Kind{KindVideoUnavailable, KindNoSuitableFormat, KindInvalidVideoInfo, KindExtractionFailed} {
		require.Equal(t, http.StatusInternalServerError, k.HTTPStatus())
	}
}
