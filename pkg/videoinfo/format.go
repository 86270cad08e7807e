package videoinfo

import (
	"fmt"
	"math"
	"strings"
)

// Unknown is the placeholder for fields yt-dlp did not report.
const Unknown = "Unknown"

// FormatDuration converts seconds to zero-padded MM:SS. Minutes are not
// wrapped into hours, so 3725 seconds is "62:05".
func FormatDuration(seconds *float64) string {
	if seconds == nil || !inRange(*seconds, math.MaxInt64) {
		return Unknown
	}
	s := int64(*seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// QualityLabel returns "{height}p" or Unknown.
func QualityLabel(f FormatInfo) string {
	if h := heightOf(f); h > 0 {
		return fmt.Sprintf("%dp", h)
	}
	return Unknown
}

// FormatLabel prefers yt-dlp's format note over the quality label.
func FormatLabel(f FormatInfo) string {
	if note := strings.TrimSpace(f.FormatNote); note != "" {
		return note
	}
	return QualityLabel(f)
}

// ResolutionLabel returns yt-dlp's resolution string when present. Otherwise
// it synthesizes "{width}x{height}", using 0 for a missing side, and falls back
// to Unknown only when both sides are missing.
func ResolutionLabel(f FormatInfo) string {
	if r := strings.TrimSpace(f.Resolution); r != "" {
		return r
	}
	w, h := positiveInt(f.Width), positiveInt(f.Height)
	if w == 0 && h == 0 {
		return Unknown
	}
	return fmt.Sprintf("%dx%d", w, h)
}

// inRange reports whether v is a finite, non-negative number below limit, so
// that converting it to an integer cannot overflow.
func inRange(v, limit float64) bool {
	return !math.IsNaN(v) && v >= 0 && v < limit
}
