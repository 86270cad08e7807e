package videoinfo

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ============================================================================
// VIDEO INFO - Raw metadata from yt-dlp --dump-single-json
// Optional numerics are pointers: nil means absent or null in the JSON.
// The shape of the rendition data varies: either a "formats" list or a single
// pre-selected rendition inlined on the top-level object. FormatSource makes
// the two cases explicit.
// ============================================================================

// FormatInfo is one rendition as reported by yt-dlp.
type FormatInfo struct {
	FormatID       string   `json:"format_id"`
	FormatNote     string   `json:"format_note"`
	URL            string   `json:"url"`
	Ext            string   `json:"ext"`
	ACodec         string   `json:"acodec"`
	VCodec         string   `json:"vcodec"`
	Width          *float64 `json:"width"`
	Height         *float64 `json:"height"`
	FPS            *float64 `json:"fps"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Resolution     string   `json:"resolution"`
}

// FormatSource is either a FormatList or a SingleFormat.
type FormatSource interface {
	isFormatSource()
}

// FormatList is the "formats" array, in yt-dlp's order. It may be empty.
type FormatList []FormatInfo

// SingleFormat is a rendition yt-dlp already selected and inlined on the
// top-level object.
type SingleFormat FormatInfo

func (FormatList) isFormatSource()   {}
func (SingleFormat) isFormatSource() {}

// VideoInfo contains parsed metadata from yt-dlp.
type VideoInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Duration    *float64 `json:"duration"`
	Thumbnail   string   `json:"thumbnail"`
	Description string   `json:"description"`
	UploadDate  string   `json:"upload_date"`
	ViewCount   *float64 `json:"view_count"`
	WebpageURL  string   `json:"webpage_url"`

	Formats FormatSource `json:"-"`
}

// NewVideoInfo parses raw yt-dlp JSON into a VideoInfo.
func NewVideoInfo(data []byte) (VideoInfo, error) {
	var v VideoInfo
	data = bytes.TrimSpace(data)
	if err := json.Unmarshal(data, &v); err != nil {
		return VideoInfo{}, fmt.Errorf("videoinfo: parse: %w", err)
	}
	return v, nil
}

// UnmarshalJSON decodes the top-level fields and picks the FormatSource
// variant from the presence of the "formats" key.
func (v *VideoInfo) UnmarshalJSON(data []byte) error {
	type plain VideoInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var probe struct {
		Formats json.RawMessage `json:"formats"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	if len(probe.Formats) > 0 && !bytes.Equal(probe.Formats, []byte("null")) {
		var list []FormatInfo
		if err := json.Unmarshal(probe.Formats, &list); err != nil {
			return fmt.Errorf("formats: %w", err)
		}
		p.Formats = FormatList(list)
	} else {
		var single FormatInfo
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		p.Formats = SingleFormat(single)
	}

	*v = VideoInfo(p)
	return nil
}
