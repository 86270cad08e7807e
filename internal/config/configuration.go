package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	Port               int     `mapstructure:"PORT" validate:"min=1,max=65535"`
	CORSAllowedOrigins string  `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RateLimitRPS       float64 `mapstructure:"RATE_LIMIT_RPS" validate:"gte=0"`
	RateLimitBurst     int     `mapstructure:"RATE_LIMIT_BURST" validate:"gte=0"`

	// yt-dlp Configuration
	YtdlpPath        string        `mapstructure:"YTDLP_PATH" validate:"required"`
	YtdlpFormat      string        `mapstructure:"YTDLP_FORMAT"`
	YtdlpCookiesFile string        `mapstructure:"YTDLP_COOKIES_FILE" validate:"omitempty,file"`
	ExtractTimeout   time.Duration `mapstructure:"EXTRACT_TIMEOUT" validate:"gt=0"`
	DownloadTimeout  time.Duration `mapstructure:"DOWNLOAD_TIMEOUT" validate:"gt=0"`

	// Metadata cache. An empty RedisAddr selects the in-memory cache.
	RedisAddr     string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB" validate:"gte=0"`
	CacheTTL      time.Duration `mapstructure:"CACHE_TTL" validate:"gte=0"`

	// Download proxy
	ProxyMode         string `mapstructure:"PROXY_MODE" validate:"oneof=stream tempfile"`
	ProxyAllowedHosts string `mapstructure:"PROXY_ALLOWED_HOSTS"`
	TempDir           string `mapstructure:"TEMP_DIR"`
	MaxFilenameLen    int    `mapstructure:"MAX_FILENAME_LEN" validate:"min=8,max=200"`
}

// CORSOrigins returns the configured origins as a list.
func (c Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// AllowedProxyHosts returns the host suffixes the stream proxy may contact.
func (c Config) AllowedProxyHosts() []string {
	return splitList(c.ProxyAllowedHosts)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	typ := reflect.TypeOf(c)
	for i := 0; i < typ.NumField(); i++ {
		if tag := typ.Field(i).Tag.Get("mapstructure"); tag != "" {
			_ = viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("PORT", 3000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "https://youtube-downloader-wdq8.vercel.app,http://localhost:5173")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("YTDLP_PATH", "yt-dlp")
	viper.SetDefault("YTDLP_FORMAT", "best[ext=mp4]/best")
	viper.SetDefault("EXTRACT_TIMEOUT", 45*time.Second)
	viper.SetDefault("DOWNLOAD_TIMEOUT", 10*time.Minute)
	viper.SetDefault("CACHE_TTL", 5*time.Minute)
	viper.SetDefault("PROXY_MODE", "stream")
	viper.SetDefault("PROXY_ALLOWED_HOSTS", "googlevideo.com,youtube.com,ytimg.com")
	viper.SetDefault("MAX_FILENAME_LEN", 100)

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration",
		"port", cfg.Port,
		"ytdlp_path", cfg.YtdlpPath,
		"proxy_mode", cfg.ProxyMode,
		"redis", cfg.RedisAddr != "",
		"cache_ttl", cfg.CacheTTL,
	)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
