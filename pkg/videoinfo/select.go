package videoinfo

import (
	"math"
	"sort"
	"strings"
)

const codecNone = "none"

// IsProgressiveMP4 reports whether f is a self-contained mp4 carrying both
// audio and video. A missing codec field is not treated as "none".
func IsProgressiveMP4(f FormatInfo) bool {
	return strings.EqualFold(strings.TrimSpace(f.Ext), "mp4") &&
		!isNone(f.ACodec) &&
		!isNone(f.VCodec)
}

func isNone(codec string) bool {
	return strings.EqualFold(strings.TrimSpace(codec), codecNone)
}

// SelectFormat picks the rendition to offer for download.
//
// For a FormatList, only progressive mp4 renditions are candidates and the
// tallest wins; equal heights keep yt-dlp's order. For a SingleFormat the
// inline rendition is used as-is unless it explicitly lacks audio or video.
func SelectFormat(src FormatSource) (FormatInfo, error) {
	switch s := src.(type) {
	case FormatList:
		candidates := make([]FormatInfo, 0, len(s))
		for _, f := range s {
			if IsProgressiveMP4(f) {
				candidates = append(candidates, f)
			}
		}
		if len(candidates) == 0 {
			return FormatInfo{}, Errorf(KindNoSuitableFormat,
				"No MP4 format with both audio and video among %d available formats", len(s))
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return heightOf(candidates[i]) > heightOf(candidates[j])
		})
		return candidates[0], nil

	case SingleFormat:
		f := FormatInfo(s)
		if isNone(f.ACodec) || isNone(f.VCodec) {
			return FormatInfo{}, Errorf(KindNoSuitableFormat,
				"Selected format %q does not contain both audio and video", f.FormatID)
		}
		return f, nil

	case nil:
		return FormatInfo{}, Errorf(KindInvalidVideoInfo, "no format information")

	default:
		return FormatInfo{}, Errorf(KindInvalidVideoInfo, "unsupported format source %T", src)
	}
}

func heightOf(f FormatInfo) int {
	return positiveInt(f.Height)
}

// positiveInt returns the integer part of *p, or 0 when p is nil or not positive.
func positiveInt(p *float64) int {
	if p == nil || !inRange(*p, math.MaxInt) {
		return 0
	}
	return int(*p)
}
