package videoinfo

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"thirdcoast.systems/shortsdl/pkg/ytdlp"
)

// Kind classifies why a video could not be turned into a Summary.
type Kind string

const (
	KindInvalidURL       Kind = "InvalidUrl"
	KindVideoUnavailable Kind = "VideoUnavailable"
	KindNoSuitableFormat Kind = "NoSuitableFormat"
	KindInvalidVideoInfo Kind = "InvalidVideoInfo"
	KindExtractionFailed Kind = "ExtractionFailed"
)

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrInvalidURL       = &Error{Kind: KindInvalidURL}
	ErrVideoUnavailable = &Error{Kind: KindVideoUnavailable}
	ErrNoSuitableFormat = &Error{Kind: KindNoSuitableFormat}
	ErrInvalidVideoInfo = &Error{Kind: KindInvalidVideoInfo}
	ErrExtractionFailed = &Error{Kind: KindExtractionFailed}
)

// Error is a classified, terminal failure. Detail is safe to show to users.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return string(e.Kind)
	}
	return string(e.Kind) + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Message is the user-facing text for the error.
func (e *Error) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Kind {
	case KindInvalidURL:
		return "Invalid YouTube URL"
	case KindVideoUnavailable:
		return "Video is unavailable"
	case KindNoSuitableFormat:
		return "No downloadable MP4 format with audio and video was found"
	case KindInvalidVideoInfo:
		return "Invalid video information received"
	default:
		return "Failed to fetch video information"
	}
}

// HTTPStatus maps a Kind to the status code the API responds with.
func (k Kind) HTTPStatus() int {
	if k == KindInvalidURL {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Classify maps any error to exactly one Kind. Classified errors are returned
// unchanged; yt-dlp failures are inspected for unavailable-video markers and
// everything else becomes ExtractionFailed with the message passed through.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	var ee *ytdlp.ExecError
	if errors.As(err, &ee) {
		if ee.IsUnavailable() {
			return &Error{Kind: KindVideoUnavailable, Detail: ee.Message(), Err: err}
		}
		return &Error{Kind: KindExtractionFailed, Detail: ee.Message(), Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindExtractionFailed, Detail: "timed out fetching video information", Err: err}
	}

	return &Error{Kind: KindExtractionFailed, Detail: err.Error(), Err: err}
}
