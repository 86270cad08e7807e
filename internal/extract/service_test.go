package extract

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"thirdcoast.systems/shortsdl/internal/cache"
	"thirdcoast.systems/shortsdl/pkg/videoinfo"
	"thirdcoast.systems/shortsdl/pkg/ytdlp"
)

const sampleJSON = `{
	"id": "abc123",
	"title": "Sample",
	"duration": 90,
	"webpage_url": "https://www.youtube.com/watch?v=abc123",
	"formats": [
		{"ext":"mp4","acodec":"aac","vcodec":"h264","height":480,"url":"u1"},
		{"ext":"mp4","acodec":"aac","vcodec":"h264","height":1080,"url":"u2"}
	]
}`

type fakeFetcher struct {
	calls atomic.Int32
	urls  []string
	mu    sync.Mutex
	fn    func(url string) (*ytdlp.Info, error)
}

func (f *fakeFetcher) GetInfo(ctx context.Context, url string, format string, extraArgs ...string) (*ytdlp.Info, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.urls = append(f.urls, url)
	f.mu.Unlock()
	return f.fn(url)
}

func okFetcher() *fakeFetcher {
	return &fakeFetcher{fn: func(string) (*ytdlp.Info, error) {
		return ytdlp.ParseInfo([]byte(sampleJSON))
	}}
}

func TestSummarize_CanonicalizesAndNormalizes(t *testing.T) {
	f := okFetcher()
	s := NewService(f, cache.NewMemory(), Options{CacheTTL: time.Minute})

	sum, err := s.Summarize(context.Background(), "https://youtube.com/shorts/abc123?feature=share")
	require.NoError(t, err)
	require.Equal(t, "Sample", sum.Title)
	require.Equal(t, "u2", sum.DownloadURL)
	require.Equal(t, "1080p", sum.Quality)
	require.Equal(t, "01:30", sum.Duration)
	require.Equal(t, []string{"https://www.youtube.com/watch?v=abc123"}, f.urls)
}

func TestSummarize_UsesCacheAcrossURLShapes(t *testing.T) {
	f := okFetcher()
	s := NewService(f, cache.NewMemory(), Options{CacheTTL: time.Minute})

	_, err := s.Summarize(context.Background(), "https://youtube.com/shorts/abc123")
	require.NoError(t, err)
	_, err = s.Summarize(context.Background(), "https://www.youtube.com/watch?v=abc123")
	require.NoError(t, err)
	require.Equal(t, int32(1), f.calls.Load())
}

func TestSummarize_ZeroTTLAlwaysFetches(t *testing.T) {
	f := okFetcher()
	s := NewService(f, nil, Options{})

	for i := 0; i < 2; i++ {
		_, err := s.Summarize(context.Background(), "https://www.youtube.com/watch?v=abc123")
		require.NoError(t, err)
	}
	require.Equal(t, int32(2), f.calls.Load())
}

func TestSummarize_InvalidURLNeverCallsYtdlp(t *testing.T) {
	f := okFetcher()
	s := NewService(f, nil, Options{})

	_, err := s.Summarize(context.Background(), "https://example.com/nothing")
	require.ErrorIs(t, err, videoinfo.ErrInvalidURL)
	require.Equal(t, int32(0), f.calls.Load())
}

func TestSummarize_ClassifiesFailures(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) (*ytdlp.Info, error)
		want error
	}{
		{
			name: "unavailable",
			fn: func(string) (*ytdlp.Info, error) {
				return nil, &ytdlp.ExecError{Stderr: "ERROR: [youtube] abc123: Private video"}
			},
			want: videoinfo.ErrVideoUnavailable,
		},
		{
			name: "other failure",
			fn: func(string) (*ytdlp.Info, error) {
				return nil, errors.New("exec: \"yt-dlp\": executable file not found in $PATH")
			},
			want: videoinfo.ErrExtractionFailed,
		},
		{
			name: "no progressive format",
			fn: func(string) (*ytdlp.Info, error) {
				return ytdlp.ParseInfo([]byte(`{"title":"t","formats":[{"ext":"webm","acodec":"opus","vcodec":"vp9","url":"x"}]}`))
			},
			want: videoinfo.ErrNoSuitableFormat,
		},
		{
			name: "missing title",
			fn: func(string) (*ytdlp.Info, error) {
				return ytdlp.ParseInfo([]byte(`{"url":"x"}`))
			},
			want: videoinfo.ErrInvalidVideoInfo,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewService(&fakeFetcher{fn: tc.fn}, nil, Options{})
			_, err := s.Summarize(context.Background(), "https://www.youtube.com/watch?v=abc123")
			require.ErrorIs(t, err, tc.want)

			var ce *videoinfo.Error
			require.ErrorAs(t, err, &ce)
		})
	}
}

func TestSummarize_CoalescesConcurrentRequests(t *testing.T) {
	release := make(chan struct{})
	f := &fakeFetcher{fn: func(string) (*ytdlp.Info, error) {
		<-release
		return ytdlp.ParseInfo([]byte(sampleJSON))
	}}
	s := NewService(f, nil, Options{})

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = s.Summarize(context.Background(), "https://www.youtube.com/watch?v=abc123")
		}(i)
	}

	require.Eventually(t, func() bool { return f.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	// Give the remaining goroutines a moment to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), f.calls.Load())
}

func TestSummarize_CallerCancellation(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := &fakeFetcher{fn: func(string) (*ytdlp.Info, error) {
		<-release
		return ytdlp.ParseInfo([]byte(sampleJSON))
	}}
	s := NewService(f, nil, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Summarize(ctx, "https://www.youtube.com/watch?v=abc123")
	require.ErrorIs(t, err, videoinfo.ErrExtractionFailed)
}
