// Package extract resolves user-supplied URLs into normalized video summaries.
package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/singleflight"
	"thirdcoast.systems/shortsdl/internal/cache"
	"thirdcoast.systems/shortsdl/internal/videoid"
	"thirdcoast.systems/shortsdl/pkg/videoinfo"
	"thirdcoast.systems/shortsdl/pkg/ytdlp"
)

// InfoFetcher is the part of *ytdlp.Client the service needs.
type InfoFetcher interface {
	GetInfo(ctx context.Context, url string, format string, extraArgs ...string) (*ytdlp.Info, error)
}

type Options struct {
	// Format is passed to yt-dlp as a selection hint.
	Format   string
	CacheTTL time.Duration
	Timeout  time.Duration
}

type Service struct {
	fetcher InfoFetcher
	cache   cache.Cache
	opts    Options
	group   singleflight.Group
}

func NewService(fetcher InfoFetcher, c cache.Cache, opts Options) *Service {
	if c == nil {
		c = cache.NewMemory()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return &Service{fetcher: fetcher, cache: c, opts: opts}
}

// Summarize canonicalizes rawURL, obtains metadata and normalizes it.
// Every returned error is a *videoinfo.Error.
func (s *Service) Summarize(ctx context.Context, rawURL string) (*videoinfo.Summary, error) {
	canon, err := videoid.Canonicalize(rawURL)
	if err != nil {
		return nil, videoinfo.Classify(err)
	}

	raw, err := s.fetch(ctx, canon)
	if err != nil {
		return nil, videoinfo.Classify(err)
	}

	info, err := videoinfo.NewVideoInfo(raw)
	if err != nil {
		return nil, videoinfo.Classify(err)
	}

	summary, err := videoinfo.Normalize(info)
	if err != nil {
		slog.Warn("extract: normalize failed", "video_id", canon.VideoID, "error", err)
		return nil, videoinfo.Classify(err)
	}

	slog.Info("extract: video summarized",
		"video_id", canon.VideoID,
		"quality", summary.Quality,
		"duration", summary.Duration,
		"filesize", humanize.Bytes(uint64(summary.Filesize)),
		"views", humanize.Comma(summary.Views),
	)
	return summary, nil
}

// fetch returns raw yt-dlp JSON for canon, from cache when possible. Concurrent
// callers for the same video share one yt-dlp invocation.
func (s *Service) fetch(ctx context.Context, canon videoid.Canonical) ([]byte, error) {
	key := canon.Key.String()

	if raw, ok, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("extract: cache get failed", "key", key, "error", err)
	} else if ok {
		slog.Debug("extract: cache hit", "video_id", canon.VideoID)
		return raw, nil
	}

	ch := s.group.DoChan(key, func() (any, error) {
		// Detached from the first caller so its cancellation does not fail the
		// others waiting on the same flight.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.Timeout)
		defer cancel()

		start := time.Now()
		info, err := s.fetcher.GetInfo(fetchCtx, canon.URL, s.opts.Format)
		if err != nil {
			slog.Warn("extract: yt-dlp failed", "url", canon.URL, "error", err)
			return nil, err
		}
		slog.Info("extract: yt-dlp metadata fetched",
			"url", canon.URL,
			"id", info.ID,
			"title", info.Title,
			"extractor", info.Extractor,
			"length", time.Duration(info.Duration*float64(time.Second)),
			"bytes", humanize.Bytes(uint64(len(info.Raw))),
			"took", time.Since(start),
		)

		if err := s.cache.Set(fetchCtx, key, info.Raw, s.opts.CacheTTL); err != nil {
			slog.Warn("extract: cache set failed", "key", key, "error", err)
		}
		return []byte(info.Raw), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("extract: shared in-flight extraction", "video_id", canon.VideoID)
		}
		return res.Val.([]byte), nil
	}
}
