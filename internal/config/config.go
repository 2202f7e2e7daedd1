// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config はアプリケーション設定を保持する
type Config struct {
	// Valkey接続設定（加入者ストア）
	RedisHost string `envconfig:"REDIS_HOST" required:"true"`
	RedisPort string `envconfig:"REDIS_PORT" required:"true"`
	RedisPass string `envconfig:"REDIS_PASS"`

	// Vector Gateway設定。設定した場合はストア直参照の代わりに
	// HTTPゲートウェイから認証ベクターを取得する。
	VectorAPIURL string `envconfig:"VECTOR_API_URL"`

	// IPA/GSUPリッスン設定
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":4222"`

	// ログ設定
	LogMaskIMSI bool `envconfig:"LOG_MASK_IMSI" default:"true"`
}

// Load は環境変数から設定を読み込む
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// ValkeyAddr はValkey接続アドレスを "host:port" 形式で返す
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// UseGateway はVector Gatewayバックエンドを使うかどうかを返す
func (c *Config) UseGateway() bool {
	return c.VectorAPIURL != ""
}

// validate は設定値のバリデーションを行う
func (c *Config) validate() error {
	if c.VectorAPIURL != "" &&
		!strings.HasPrefix(c.VectorAPIURL, "http://") && !strings.HasPrefix(c.VectorAPIURL, "https://") {
		return fmt.Errorf("VECTOR_API_URL must start with http:// or https://")
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("LISTEN_ADDR must not be empty")
	}
	return nil
}
