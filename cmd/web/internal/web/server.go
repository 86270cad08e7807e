package web

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/api/fileserver"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/api/video_api"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/common"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/content"
	staticpkg "thirdcoast.systems/shortsdl/cmd/web/internal/web/utils/static"
	"thirdcoast.systems/shortsdl/internal/config"
	"thirdcoast.systems/shortsdl/internal/proxy"
)

// Ytdlp is the subset of *ytdlp.Client the web layer calls directly.
type Ytdlp interface {
	video_api.VersionProber
	video_api.FileDownloader
}

type Webserver struct {
	*echo.Echo
	conf        *config.Config
	service     video_api.Summarizer
	ytdlp       Ytdlp
	staticCache *staticpkg.StaticCache
	downloader  *video_api.Downloader
	netClient   *http.Client
}

func NewWebserver(ctx context.Context, conf *config.Config, service video_api.Summarizer, yt Ytdlp) (*Webserver, error) {
	e := echo.New()

	staticCache, err := staticpkg.NewStaticCache()
	if err != nil {
		return nil, err
	}

	webserver := &Webserver{
		Echo:        e,
		conf:        conf,
		service:     service,
		ytdlp:       yt,
		staticCache: staticCache,
		downloader: &video_api.Downloader{
			Summarizer: service,
			Streamer:   proxy.NewStreamer(conf.AllowedProxyHosts(), conf.DownloadTimeout),
			Files:      yt,
			Workspace:  fileserver.NewWorkspace(conf.TempDir),
			Options: video_api.ProxyOptions{
				Mode:           conf.ProxyMode,
				Format:         conf.YtdlpFormat,
				MaxFilenameLen: conf.MaxFilenameLen,
				Timeout:        conf.DownloadTimeout,
			},
		},
		netClient: &http.Client{Timeout: 10 * time.Second},
	}

	if err = webserver.registerRoutes(); err != nil {
		return nil, err
	}

	if err = webserver.setupMiddleware(); err != nil {
		return nil, err
	}

	slog.Info("webserver configured",
		"cors_origins", conf.CORSOrigins(),
		"proxy_mode", conf.ProxyMode,
		"rate_limit_rps", conf.RateLimitRPS,
	)
	return webserver, nil
}

func (s *Webserver) setupMiddleware() error {
	s.HideBanner = true
	s.HidePort = true
	s.Use(middleware.BodyLimit("1M"))
	s.Use(middleware.Recover())
	s.Use(middleware.RequestID())
	s.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Video bytes are already compressed and may be ranged.
			return c.Path() == "/api/download-video"
		},
	}))

	origins := s.conf.CORSOrigins()
	s.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderContentType, "Range"},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "Content-Range"},
		AllowCredentials: !slices.Contains(origins, "*"),
	}))

	s.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/healthz"
		},
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  false,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				fields = append(fields, "error", v.Error)
			}
			slog.Info("request", fields...)
			return nil
		},
	}))

	return nil
}

// rateLimiter limits /api per client IP. A zero rate disables it.
func (s *Webserver) rateLimiter() echo.MiddlewareFunc {
	if s.conf.RateLimitRPS <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().Method == http.MethodOptions
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.conf.RateLimitRPS),
			Burst:     s.conf.RateLimitBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return common.JSONError(c, http.StatusForbidden, "Rate limiter error", "")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			slog.Warn("rate limit exceeded", "remote_ip", identifier, "path", c.Path())
			return common.JSONError(c, http.StatusTooManyRequests, "Too many requests", "")
		},
	})
}

func (s *Webserver) registerRoutes() error {
	apiGroup := s.Group("/api")
	apiGroup.Use(s.rateLimiter())
	apiGroup.POST("/download", video_api.HandleDownload(s.service))
	apiGroup.GET("/download-video", video_api.HandleDownloadVideo(s.downloader))
	apiGroup.GET("/test-ytdl", video_api.HandleTestYtdl(s.ytdlp))
	apiGroup.GET("/test-network", video_api.HandleTestNetwork(s.netClient, video_api.NetworkProbeURL))

	// Health check
	s.GET("/healthz", func(c echo.Context) error {
		return c.String(200, "ok")
	})

	// Static file serving
	s.GET("/static/*", s.staticCache.ServeStaticFile("/static/"))

	s.GET("/", content.HandleHomePage(s.staticCache))

	return nil
}

// RouteTable lists method and path for every registered route, sorted.
func (s *Webserver) RouteTable() []string {
	var out []string
	for _, r := range s.Echo.Routes() {
		out = append(out, r.Method+" "+r.Path)
	}
	slices.Sort(out)
	return slices.Compact(out)
}
