package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"thirdcoast.systems/shortsdl/cmd/web/internal/web"
	"thirdcoast.systems/shortsdl/internal/cache"
	"thirdcoast.systems/shortsdl/internal/config"
	"thirdcoast.systems/shortsdl/internal/extract"
	"thirdcoast.systems/shortsdl/pkg/ytdlp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	yt := ytdlp.New()
	yt.Path = conf.YtdlpPath
	yt.LogCallback = func(stream string, line string) {
		// Metadata dumps are one JSON line; only progress and warnings are useful here.
		if strings.HasPrefix(line, "{") {
			return
		}
		slog.Debug("yt-dlp output", "stream", stream, "line", line)
	}
	if conf.YtdlpCookiesFile != "" {
		cookies, err := os.ReadFile(conf.YtdlpCookiesFile)
		if err != nil {
			slog.Error("failed to read cookies file", "path", conf.YtdlpCookiesFile, "error", err)
			os.Exit(1)
		}
		yt.Cookies = string(cookies)
	}

	versionCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	if version, err := yt.Version(versionCtx); err != nil {
		slog.Warn("yt-dlp not runnable; extraction will fail until it is installed", "path", yt.PathOrDefault(), "error", err)
	} else {
		slog.Info("yt-dlp detected", "version", version)
	}
	cancel()

	metaCache := cache.Open(ctx, conf.RedisAddr, conf.RedisPassword, conf.RedisDB)
	defer metaCache.Close()

	svc := extract.NewService(yt, metaCache, extract.Options{
		Format:   conf.YtdlpFormat,
		CacheTTL: conf.CacheTTL,
		Timeout:  conf.ExtractTimeout,
	})

	e, err := web.NewWebserver(ctx, conf, svc, yt)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.Port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
