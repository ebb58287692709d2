// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Telegram（通知トランスポート）
	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIBase  string

	// レジストリ
	LinksFile string

	// Fetch
	FetchTimeout time.Duration
	FetchMaxSize int64

	// Monitor
	CheckDelay    time.Duration
	CheckInterval time.Duration

	// Server
	ServerPort string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（存在しなくてもエラーにしない）。
// 必須環境変数が未設定の場合はまとめてエラーを返し、起動を中断させる。
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if cfg.TelegramBotToken == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}

	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	if cfg.TelegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.TelegramAPIBase = getEnvString("TELEGRAM_API_BASE_URL", "https://api.telegram.org")
	cfg.LinksFile = getEnvString("LINKS_FILE", "monitored_links.json")
	cfg.FetchTimeout = getEnvDuration("FETCH_TIMEOUT", 10*time.Second)
	cfg.FetchMaxSize = getEnvInt64("FETCH_MAX_SIZE", 5242880)
	cfg.CheckDelay = getEnvDuration("CHECK_DELAY", 2*time.Second)
	cfg.CheckInterval = getEnvDuration("CHECK_INTERVAL", 30*time.Minute)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
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
