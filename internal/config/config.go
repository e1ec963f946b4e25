// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	modeRelease = "release"

	defaultSessionMaxAge = 12 * 60 * 60
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// セッション設定
	SessionSecret        string // セッションIDクッキー署名用の秘密鍵
	SessionMaxAgeSeconds int    // セッションの有効期間（秒）

	// パスワード設定
	BcryptCost int // bcryptのコスト係数

	// 初期ユーザー
	SeedDemoUsers     bool   // デモ用アカウント（admin/user）を起動時に登録するか
	AdminUsername     string // 管理者アカウントの表示名
	AdminEmail        string // 管理者アカウントのメールアドレス
	AdminPasswordHash string // bcryptでハッシュ化された管理者パスワード

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り、空なら無効）

	// 運用設定
	LogLevel       string // zapのログレベル
	PprofAddr      string // pprofサーバーのアドレス（空なら無効）
	MetricsEnabled bool   // /metrics を公開するか
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	mode := getEnv("GIN_MODE", "debug")

	config := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: mode,

		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionMaxAgeSeconds: getEnvAsInt("SESSION_MAX_AGE_SECONDS", defaultSessionMaxAge),

		BcryptCost: getEnvAsInt("BCRYPT_COST", 10),

		// 本番モードではデモアカウントを明示的に有効化しない限り登録しない
		SeedDemoUsers:     getEnvAsBool("SEED_DEMO_USERS", mode != modeRelease),
		AdminUsername:     getEnv("ADMIN_USERNAME", ""),
		AdminEmail:        strings.TrimSpace(getEnv("ADMIN_EMAIL", "")),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		LogLevel:       getEnv("LOG_LEVEL", "info"),
		PprofAddr:      getEnv("PPROF_ADDR", ""),
		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.GinMode == modeRelease && c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required in release mode")
	}
	if c.SessionMaxAgeSeconds <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_SECONDS must be positive, got %d", c.SessionMaxAgeSeconds)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}

	// 管理者アカウントは3項目すべて指定するか、すべて省略する
	set := 0
	for _, v := range []string{c.AdminUsername, c.AdminEmail, c.AdminPasswordHash} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD_HASH must be set together")
	}
	if c.AdminPasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(c.AdminPasswordHash)); err != nil {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is not a valid bcrypt hash: %w", err)
		}
	}

	return nil
}

// HasAdmin は管理者アカウントが設定されているかを返します。
func (c *Config) HasAdmin() bool {
	return c.AdminEmail != "" && c.AdminPasswordHash != ""
}

// AllowedOrigins は CORS_ALLOWED_ORIGINS を配列に変換します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsRelease は本番モードかどうかを返します。
func (c *Config) IsRelease() bool {
	return c.GinMode == modeRelease
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します。
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
