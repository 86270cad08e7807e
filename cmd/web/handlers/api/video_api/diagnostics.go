package video_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"thirdcoast.systems/shortsdl/cmd/web/handlers/common"
)

// NetworkProbeURL is fetched by HandleTestNetwork.
const NetworkProbeURL = "https://www.youtube.com"

// VersionProber reports the installed yt-dlp version.
type VersionProber interface {
	Version(ctx context.Context) (string, error)
}

// HandleTestYtdl checks that yt-dlp can be executed.
func HandleTestYtdl(v VersionProber) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
		defer cancel()

		version, err := v.Version(ctx)
		if err != nil {
			common.Logger(c).Error("test-ytdl: yt-dlp not working", "error", err)
			return common.JSONError(c, http.StatusInternalServerError, "youtube-dl not working", err.Error())
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"version": version,
		})
	}
}

// HandleTestNetwork checks outbound connectivity to target.
func HandleTestNetwork(client *http.Client, target string) echo.HandlerFunc {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return func(c echo.Context) error {
		req, err := http.NewRequestWithContext(c.Request().Context(), http.MethodGet, target, nil)
		if err != nil {
			return common.JSONError(c, http.StatusInternalServerError, "Cannot connect to YouTube", err.Error())
		}

		resp, err := client.Do(req)
		if err != nil {
			common.Logger(c).Error("test-network: request failed", "target", target, "error", err)
			return common.JSONError(c, http.StatusInternalServerError, "Cannot connect to YouTube", err.Error())
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return common.JSONError(c, http.StatusInternalServerError, "Cannot connect to YouTube",
				fmt.Sprintf("Request failed with status code %d", resp.StatusCode))
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"status":  resp.StatusCode,
			"message": "Connected to YouTube",
		})
	}
}
