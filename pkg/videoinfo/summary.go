package videoinfo

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Summary is the normalized, UI-ready description of a video. Every field is
// always present; Title and DownloadURL are never empty.
type Summary struct {
	Title           string `json:"title"`
	DownloadURL     string `json:"downloadUrl"`
	Format          string `json:"format"`
	IsAudioIncluded bool   `json:"isAudioIncluded"`
	Duration        string `json:"duration"`
	Thumbnail       string `json:"thumbnail"`
	Filesize        int64  `json:"filesize"`
	Description     string `json:"description"`
	UploadDate      string `json:"uploadDate"`
	Views           int64  `json:"views"`
	Resolution      string `json:"resolution"`
	FPS             FPS    `json:"fps"`
	Quality         string `json:"quality"`
}

// FPS encodes as a JSON number when known and as the string "Unknown" otherwise.
type FPS struct {
	Value float64
	Known bool
}

func fpsOf(p *float64) FPS {
	if p == nil || *p <= 0 {
		return FPS{}
	}
	return FPS{Value: *p, Known: true}
}

func (f FPS) MarshalJSON() ([]byte, error) {
	if !f.Known {
		return json.Marshal(Unknown)
	}
	return []byte(strconv.FormatFloat(f.Value, 'f', -1, 64)), nil
}

func (f *FPS) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*f = FPS{}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*f = FPS{}
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = fpsOf(&v)
	return nil
}

func (f FPS) String() string {
	if !f.Known {
		return Unknown
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// Normalize selects the best rendition from info and builds its Summary.
// It performs no I/O and keeps no state: equal inputs give equal outputs.
func Normalize(info VideoInfo) (*Summary, error) {
	chosen, err := SelectFormat(info.Formats)
	if err != nil {
		return nil, err
	}

	downloadURL := firstNonBlank(chosen.URL, info.WebpageURL)
	if downloadURL == "" {
		return nil, Errorf(KindInvalidVideoInfo, "No download URL in video information")
	}

	s := &Summary{
		Title:           strings.TrimSpace(info.Title),
		DownloadURL:     downloadURL,
		Format:          FormatLabel(chosen),
		IsAudioIncluded: true,
		Duration:        FormatDuration(info.Duration),
		Thumbnail:       info.Thumbnail,
		Filesize:        filesizeOf(chosen),
		Description:     info.Description,
		UploadDate:      info.UploadDate,
		Views:           nonNegative(info.ViewCount),
		Resolution:      ResolutionLabel(chosen),
		FPS:             fpsOf(chosen.FPS),
		Quality:         QualityLabel(chosen),
	}

	// yt-dlp occasionally returns partial documents.
	if s.Title == "" {
		return nil, Errorf(KindInvalidVideoInfo, "Invalid video information received: missing title")
	}
	if strings.TrimSpace(s.DownloadURL) == "" {
		return nil, Errorf(KindInvalidVideoInfo, "Invalid video information received: missing download URL")
	}

	return s, nil
}

func filesizeOf(f FormatInfo) int64 {
	if n := nonNegative(f.Filesize); n > 0 {
		return n
	}
	return nonNegative(f.FilesizeApprox)
}

func nonNegative(p *float64) int64 {
	if p == nil || !inRange(*p, math.MaxInt64) {
		return 0
	}
	return int64(*p)
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
