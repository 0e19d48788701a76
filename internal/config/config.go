package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	JWTSecret string // ログイン用JWTの署名シークレット

	StripeSecretKey     string // Stripe APIキー
	StripeWebhookSecret string // webhook署名検証用シークレット

	DownloadTokenSecret string        // 型紙ダウンロードトークンの署名シークレット
	DownloadTokenTTL    time.Duration // ダウンロードリンクの有効期限（デフォルト48h）

	PauseCacheTTL time.Duration // 購入停止フラグのキャッシュ期間（デフォルト30s）

	BaseURL string // 決済の戻り先とダウンロードリンクの組み立てに使う

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	EmailFrom    string
	ShopName     string // メールの署名と件名に使う

	GoEnv string // dev/prod
}

// Loadは環境変数
func Load() (Config, error) {
	cfg := Config{
		Port: os.Getenv("PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		DownloadTokenSecret: os.Getenv("PATTERN_DOWNLOAD_SECRET"),
		DownloadTokenTTL:    durationHours("PATTERN_DOWNLOAD_TTL_HOURS", 48),

		PauseCacheTTL: durationSeconds("PAUSE_CACHE_TTL_SECONDS", 30),

		BaseURL: os.Getenv("BASE_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getenv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		EmailFrom:    os.Getenv("EMAIL_FROM"),
		ShopName:     getenv("SHOP_NAME", "Pattern Atelier"),

		GoEnv: getenv("GO_ENV", "dev"),
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.StripeSecretKey == "" {
		return Config{}, fmt.Errorf("STRIPE_SECRET_KEY is required")
	}
	if cfg.StripeWebhookSecret == "" {
		return Config{}, fmt.Errorf("STRIPE_WEBHOOK_SECRET is required")
	}
	if cfg.DownloadTokenSecret == "" {
		return Config{}, fmt.Errorf("PATTERN_DOWNLOAD_SECRET is required")
	}
	if cfg.BaseURL == "" {
		return Config{}, fmt.Errorf("BASE_URL is required")
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func durationHours(key string, def int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Hour
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return time.Duration(def) * time.Hour
	}
	return time.Duration(n) * time.Hour
}

func durationSeconds(key string, def int) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(def) * time.Second
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return time.Duration(def) * time.Second
	}
	return time.Duration(n) * time.Second
}
