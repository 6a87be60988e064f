package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/aispecialist/internal/logger"
)

// アバター画像の生成方式として受け付ける値。
var validAvatarStyles = map[string]bool{
	"dicebear": true,
	"text":     true,
	"robohash": true,
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
//
// DATABASE_URL・RESEND_API_KEY・REMOTE_LOG_ENDPOINT は任意で、
// 未設定の場合は該当機能が無効になる。
type Config struct {
	// Database
	DatabaseURL string

	// Email
	ResendAPIKey string
	MailFrom     string

	// Logging
	LogLevel          logger.Level
	LogJSON           bool
	RemoteLogEndpoint string
	Environment       string
	Version           string

	// Content
	ContentDir  string
	AvatarStyle string

	// Rate Limit（req/min）
	RateLimitEarlyAccess int
	RateLimitBurst       int

	// Server
	ServerPort        string
	BaseURL           string
	ShutdownTimeout   time.Duration
	TrustProxyHeaders bool

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 値が不正な環境変数がある場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var invalid []string

	cfg.Environment = getEnvString("APP_ENV", "development")
	cfg.Version = getEnvString("APP_VERSION", "1.0.0")

	cfg.LogLevel = logger.LevelInfo
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, ok := logger.ParseLevel(v)
		if !ok {
			invalid = append(invalid, "LOG_LEVEL")
		}
		cfg.LogLevel = level
	}

	cfg.AvatarStyle = strings.ToLower(getEnvString("AVATAR_STYLE", "dicebear"))
	if !validAvatarStyles[cfg.AvatarStyle] {
		invalid = append(invalid, "AVATAR_STYLE")
	}

	cfg.RateLimitEarlyAccess = getEnvInt("RATE_LIMIT_EARLY_ACCESS", 10)
	if cfg.RateLimitEarlyAccess <= 0 {
		invalid = append(invalid, "RATE_LIMIT_EARLY_ACCESS")
	}
	cfg.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", cfg.RateLimitEarlyAccess)
	if cfg.RateLimitBurst <= 0 {
		invalid = append(invalid, "RATE_LIMIT_BURST")
	}

	if len(invalid) > 0 {
		return nil, fmt.Errorf("invalid environment variables: %v", invalid)
	}

	// Optional fields
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.MailFrom = getEnvString("MAIL_FROM", "")
	cfg.RemoteLogEndpoint = getEnvString("REMOTE_LOG_ENDPOINT", "")
	cfg.LogJSON = getEnvBool("LOG_JSON", cfg.Environment == "production")
	cfg.ContentDir = getEnvString("CONTENT_DIR", "content/interview")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = strings.TrimRight(getEnvString("BASE_URL", "http://localhost:3000"), "/")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	cfg.TrustProxyHeaders = getEnvBool("TRUST_PROXY_HEADERS", false)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// LoggerConfig はアプリケーションロガーの設定を返す。
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:          c.LogLevel,
		Environment:    c.Environment,
		Version:        c.Version,
		EnableConsole:  true,
		EnableJSON:     c.LogJSON,
		EnableRemote:   c.RemoteLogEndpoint != "",
		RemoteEndpoint: c.RemoteLogEndpoint,
	}
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
