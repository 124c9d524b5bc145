package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`
	DBDriver       string `env:"DB_DRIVER" env-default:"postgres" env-description:"postgres (lib/pq) or pgx"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" env-default:"10"`

	// Flash
	RedisURL string        `env:"REDIS_URL"`
	FlashTTL time.Duration `env:"FLASH_TTL" env-default:"5m"`

	// Rate Limit
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" env-default:"120"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`

	// Server
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	BaseURL    string `env:"BASE_URL" env-default:"http://localhost:8080"`

	// Cookie
	CookieSecure bool
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" env-default:"http://localhost:3000"`
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合や値が解釈できない場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("required environment variables are not set: [DATABASE_URL]")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "pgx" {
		return nil, fmt.Errorf("DB_DRIVER must be postgres or pgx, got %q", cfg.DBDriver)
	}
	if cfg.FlashTTL <= 0 {
		return nil, fmt.Errorf("FLASH_TTL must be positive, got %s", cfg.FlashTTL)
	}
	if cfg.RateLimitGeneral <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_GENERAL must be positive, got %d", cfg.RateLimitGeneral)
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	return cfg, nil
}

// Usage は設定可能な環境変数の一覧を返す。
func Usage() string {
	var cfg Config
	var b strings.Builder
	header := "Environment variables:"
	f := cleanenv.FUsage(&b, &cfg, &header)
	f()
	return b.String()
}
