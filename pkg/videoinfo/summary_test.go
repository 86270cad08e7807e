package videoinfo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, doc string) VideoInfo {
	t.Helper()
	v, err := NewVideoInfo([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestNormalize_EndToEndPicksTallestProgressive(t *testing.T) {
	info := mustParse(t, `{
		"title": "Sample",
		"duration": 90,
		"formats": [
			{"ext":"mp4","acodec":"aac","vcodec":"h264","height":480,"url":"u1"},
			{"ext":"mp4","acodec":"aac","vcodec":"h264","height":1080,"url":"u2"}
		]
	}`)

	s, err := Normalize(info)
	require.NoError(t, err)
	require.Equal(t, "Sample", s.Title)
	require.Equal(t, "u2", s.DownloadURL)
	require.Equal(t, "1080p", s.Quality)
	require.Equal(t, "1080p", s.Format)
	require.Equal(t, "01:30", s.Duration)
	require.True(t, s.IsAudioIncluded)
}

func TestNormalize_IgnoresAdaptiveAndNonMP4Formats(t *testing.T) {
	info := mustParse(t, `{
		"title": "t",
		"formats": [
			{"ext":"mp4","acodec":"none","vcodec":"avc1","height":2160,"url":"video-only"},
			{"ext":"m4a","acodec":"mp4a","vcodec":"none","url":"audio-only"},
			{"ext":"webm","acodec":"opus","vcodec":"vp9","height":1440,"url":"webm"},
			{"ext":"mp4","acodec":"mp4a","vcodec":"avc1","height":360,"url":"progressive"}
		]
	}`)

	s, err := Normalize(info)
	require.NoError(t, err)
	require.Equal(t, "progressive", s.DownloadURL)
	require.Equal(t, "360p", s.Quality)
}

func TestNormalize_TiesKeepOriginalOrder(t *testing.T) {
	info := mustParse(t, `{
		"title": "t",
		"formats": [
			{"ext":"mp4","acodec":"a","vcodec":"v","height":720,"url":"first"},
			{"ext":"mp4","acodec":"a","vcodec":"v","height":720,"url":"second"},
			{"ext":"mp4","acodec":"a","vcodec":"v","url":"no-height"}
		]
	}`)

	s, err := Normalize(info)
	require.NoError(t, err)
	require.Equal(t, "first", s.DownloadURL)
}

func TestNormalize_NoSuitableFormat(t *testing.T) {
	for name, doc := range map[string]string{
		"empty list":    `{"title":"t","formats":[]}`,
		"only adaptive": `{"title":"t","formats":[{"ext":"mp4","acodec":"none","vcodec":"avc1","url":"x"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(mustParse(t, doc))
			require.ErrorIs(t, err, ErrNoSuitableFormat)
		})
	}
}

func TestNormalize_SingleInlineRendition(t *testing.T) {
	info := mustParse(t, `{
		"title": "Inline",
		"url": "https://rr1.googlevideo.com/videoplayback?id=1",
		"ext": "mp4",
		"acodec": "mp4a.40.2",
		"vcodec": "avc1.64001F",
		"width": 720,
		"height": 1280,
		"fps": 30,
		"filesize": 12345,
		"view_count": 99,
		"upload_date": "20240131",
		"thumbnail": "https://i.ytimg.com/vi/x/hq.jpg",
		"description": "desc"
	}`)
	_, isSingle := info.Formats.(SingleFormat)
	require.True(t, isSingle)

	s, err := Normalize(info)
	require.NoError(t, err)
	require.Equal(t, "https://rr1.googlevideo.com/videoplayback?id=1", s.DownloadURL)
	require.Equal(t, "720x1280", s.Resolution)
	require.Equal(t, "1280p", s.Quality)
	require.Equal(t, int64(12345), s.Filesize)
	require.Equal(t, int64(99), s.Views)
	require.Equal(t, "20240131", s.UploadDate)
	require.Equal(t, FPS{Value: 30, Known: true}, s.FPS)
	require.Equal(t, "Unknown", s.Duration)
}

func TestNormalize_SingleRenditionMissingAudioRejected(t *testing.T) {
	_, err := Normalize(mustParse(t, `{"title":"t","url":"u","acodec":"none","vcodec":"avc1"}`))
	require.ErrorIs(t, err, ErrNoSuitableFormat)
}

func TestNormalize_FallsBackToWebpageURL(t *testing.T) {
	s, err := Normalize(mustParse(t, `{"title":"t","webpage_url":"https://www.youtube.com/watch?v=abc"}`))
	require.NoError(t, err)
	require.Equal(t, "https://www.youtube.com/watch?v=abc", s.DownloadURL)
}

func TestNormalize_InvalidVideoInfo(t *testing.T) {
	_, err := Normalize(mustParse(t, `{"title":"t"}`))
	require.ErrorIs(t, err, ErrInvalidVideoInfo)

	_, err = Normalize(mustParse(t, `{"title":"   ","url":"u"}`))
	require.ErrorIs(t, err, ErrInvalidVideoInfo)

	_, err = Normalize(mustParse(t, `{"formats":[{"ext":"mp4","acodec":"a","vcodec":"v","url":"u"}]}`))
	require.ErrorIs(t, err, ErrInvalidVideoInfo)
}

func TestNormalize_Defaults(t *testing.T) {
	s, err := Normalize(mustParse(t, `{"title":"t","formats":[{"ext":"mp4","acodec":"a","vcodec":"v","url":"u","filesize":null}]}`))
	require.NoError(t, err)
	require.Equal(t, "Unknown", s.Duration)
	require.Equal(t, "Unknown", s.Resolution)
	require.Equal(t, "Unknown", s.Quality)
	require.Equal(t, "Unknown", s.Format)
	require.False(t, s.FPS.Known)
	require.Zero(t, s.Filesize)
	require.Zero(t, s.Views)
	require.Equal(t, "", s.Thumbnail)
	require.Equal(t, "", s.Description)
	require.Equal(t, "", s.UploadDate)
}

func TestNormalize_FormatNoteAndApproxFilesize(t *testing.T) {
	s, err := Normalize(mustParse(t, `{"title":"t","formats":[
		{"ext":"mp4","acodec":"a","vcodec":"v","url":"u","height":720,"format_note":"720p60","filesize_approx":2048,"resolution":"1280x720"}
	]}`))
	require.NoError(t, err)
	require.Equal(t, "720p60", s.Format)
	require.Equal(t, "720p", s.Quality)
	require.Equal(t, "1280x720", s.Resolution)
	require.Equal(t, int64(2048), s.Filesize)
}

func TestNormalize_Deterministic(t *testing.T) {
	info := mustParse(t, `{"title":"t","duration":61.9,"formats":[{"ext":"mp4","acodec":"a","vcodec":"v","url":"u","height":480,"fps":29.97}]}`)

	a, err := Normalize(info)
	require.NoError(t, err)
	b, err := Normalize(info)
	require.NoError(t, err)

	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	require.Equal(t, string(ja), string(jb))
}

func TestSummary_JSONShape(t *testing.T) {
	s := Summary{Title: "t", DownloadURL: "u", IsAudioIncluded: true, FPS: FPS{}}
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"title", "downloadUrl", "format", "isAudioIncluded", "duration", "thumbnail",
		"filesize", "description", "uploadDate", "views", "resolution", "fps", "quality"} {
		require.Contains(t, m, k)
	}
	require.Equal(t, "Unknown", m["fps"])

	s.FPS = FPS{Value: 29.97, Known: true}
	b, err = json.Marshal(s)
	require.NoError(t, err)
	require.Contains(t, string(b), `"fps":29.97`)

	var back Summary
	require.NoError(t, json.Unmarshal(b, &back))
	require.Equal(t, s.FPS, back.FPS)
}
