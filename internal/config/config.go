// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// アプリケーション設定
	AppUsername     string // ログイン用ユーザー名（空の場合は認証無効）
	AppPasswordHash string // bcryptでハッシュ化されたパスワード
	SessionSecret   string // セッション署名用の秘密鍵

	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// ジョブ/ワーカー設定
	WorkerConcurrency     int // 同時に実行する変換ワーカー数
	QueueCapacity         int // 実行待ちキューの長さ（満杯時は受付拒否）
	ConvertTimeoutSeconds int // 1ジョブあたりの変換タイムアウト（秒）

	// 変換器設定（URLとコマンドはどちらか一方を指定）
	ConverterURL     string // HTTP変換サービスのベースURL
	ConverterCommand string // 変換コマンドのパス
	ConverterArgs    string // 変換コマンドの引数（シェル風に分割、クォート可、{source}/{pages} を置換）

	// 変換元の制限
	MaxSourceSize int64 // ローカル変換元ファイルの最大サイズ（バイト）
	MaxPages      int   // ローカル変換元PDFの最大ページ数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	config := &Config{
		// アプリケーション設定
		AppUsername:     getEnv("APP_USERNAME", ""),
		AppPasswordHash: getEnv("APP_PASSWORD_HASH", ""),
		SessionSecret:   getEnv("SESSION_SECRET", ""),

		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// ジョブ/ワーカー設定
		WorkerConcurrency:     getEnvAsInt("WORKER_CONCURRENCY", 4),
		QueueCapacity:         getEnvAsInt("QUEUE_CAPACITY", 64),
		ConvertTimeoutSeconds: getEnvAsInt("CONVERT_TIMEOUT_SECONDS", 300),

		// 変換器設定
		ConverterURL:     getEnv("CONVERTER_URL", ""),
		ConverterCommand: getEnv("CONVERTER_CMD", ""),
		ConverterArgs:    getEnv("CONVERTER_ARGS", "{source}"),

		// 変換元の制限
		MaxSourceSize: getEnvAsInt64("MAX_SOURCE_SIZE", 104857600), // 100MB
		MaxPages:      getEnvAsInt("MAX_PAGES", 200),
	}

	// 必須設定のバリデーション
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
	// 認証設定は任意だが、設定する場合は3点セットで必要
	if c.AppUsername != "" || c.AppPasswordHash != "" || c.SessionSecret != "" {
		if c.AppUsername == "" {
			return fmt.Errorf("APP_USERNAME is required when auth is configured")
		}
		if c.AppPasswordHash == "" {
			return fmt.Errorf("APP_PASSWORD_HASH is required when auth is configured")
		}
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required when auth is configured")
		}
	}

	if c.ConverterURL != "" && c.ConverterCommand != "" {
		return fmt.Errorf("CONVERTER_URL and CONVERTER_CMD are mutually exclusive")
	}

	// ローカル開発では変換器未設定でも起動時に気付けるよう release のみ厳格にチェック
	if c.GinMode == "release" {
		if c.ConverterURL == "" && c.ConverterCommand == "" {
			return fmt.Errorf("CONVERTER_URL or CONVERTER_CMD is required in release mode")
		}
	}

	return nil
}

// AuthEnabled はセッション認証を有効化すべきかどうかを返します。
func (c *Config) AuthEnabled() bool {
	return c.AppUsername != "" && c.AppPasswordHash != "" && c.SessionSecret != ""
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

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
