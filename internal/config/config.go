// Package config は .env.local・YAML・環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "TODO"

// ErrCredentialsNotConfigured はログイン用の資格情報が設定されていない場合のエラーです。
var ErrCredentialsNotConfigured = errors.New("default credentials are not configured")

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Authentication AuthenticationConfig `mapstructure:"authentication"`
	Session        SessionConfig        `mapstructure:"session"`
	CORS           CORSConfig           `mapstructure:"cors"`
	Security       SecurityConfig       `mapstructure:"security"`
	Redis          RedisConfig          `mapstructure:"redis"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Metrics        MetricsConfig        `mapstructure:"metrics"`
}

// ServerConfig は HTTP サーバーの設定です。
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	GinMode         string        `mapstructure:"gin_mode"` // debug, release, test
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AuthenticationConfig はログインゲートの設定です。
type AuthenticationConfig struct {
	DefaultCredentials CredentialsConfig `mapstructure:"default_credentials"`
}

// CredentialsConfig は唯一のログインユーザーの資格情報です。
// PasswordHash が設定されている場合は Password より優先されます。
type CredentialsConfig struct {
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt
}

// SessionConfig はセッションCookieの設定です。
type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	Lifetime   time.Duration `mapstructure:"lifetime"`

	// SecretGenerated は Secret が起動時に自動生成されたことを示します。
	SecretGenerated bool `mapstructure:"-"`
}

// CORSConfig は CORS の設定です。
type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"` // カンマ区切り
}

// SecurityConfig はログイン試行制限の設定です。
type SecurityConfig struct {
	Login LoginLimitConfig `mapstructure:"login"`
}

// LoginLimitConfig はログイン失敗回数によるロックの設定です。
type LoginLimitConfig struct {
	MaxAttempts  int           `mapstructure:"max_attempts"`
	Window       time.Duration `mapstructure:"window"`
	LockDuration time.Duration `mapstructure:"lock_duration"`
}

// RedisConfig は Redis の接続設定です。URL が空の場合はメモリ上で管理します。
type RedisConfig struct {
	URL string `mapstructure:"url"`
}

// LoggingConfig はログ出力の設定です。
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

// MetricsConfig は Prometheus メトリクスの設定です。
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load は .env.local・設定ファイル・環境変数から設定を読み込みます。
// configPath が空の場合は config.yaml をカレントディレクトリと ./configs から探します。
func Load(configPath string) (*Config, error) {
	// .env.local ファイルを読み込む（存在しない場合はスキップ）
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// ホスティング環境で一般的な変数名も受け付ける
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("server.gin_mode", envPrefix+"_SERVER_GIN_MODE", "GIN_MODE")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
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

func setDefaults(v *viper.Viper) {
	// サーバー設定
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.gin_mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// 認証設定（値は環境ごとに与える）
	v.SetDefault("authentication.default_credentials.username", "")
	v.SetDefault("authentication.default_credentials.password", "")
	v.SetDefault("authentication.default_credentials.password_hash", "")

	// セッション設定
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "TodoAuth")
	v.SetDefault("session.lifetime", time.Hour)

	v.SetDefault("cors.allowed_origins", "http://localhost:8080")

	// ログイン試行制限: 5回/15分、ロック10分
	v.SetDefault("security.login.max_attempts", 5)
	v.SetDefault("security.login.window", 15*time.Minute)
	v.SetDefault("security.login.lock_duration", 10*time.Minute)

	v.SetDefault("redis.url", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Validate は設定の妥当性を検証します。
// debug モードでセッション秘密鍵が空の場合は起動ごとのランダム鍵で補います。
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be a number between 1 and 65535")
	}

	switch c.Server.GinMode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.gin_mode must be one of: debug, release, test")
	}

	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	if c.Session.Lifetime <= 0 {
		return fmt.Errorf("session.lifetime must be positive")
	}

	if c.Security.Login.MaxAttempts < 0 {
		return fmt.Errorf("security.login.max_attempts must not be negative")
	}

	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	// 本番環境では資格情報と秘密鍵を必須とする
	if c.Server.GinMode == "release" {
		if c.Session.Secret == "" {
			return fmt.Errorf("session.secret is required in release mode")
		}
		if _, err := c.Credentials(); err != nil {
			return fmt.Errorf("authentication.default_credentials: %w", err)
		}
	}

	if c.Session.Secret == "" {
		secret, err := randomSecret()
		if err != nil {
			return fmt.Errorf("failed to generate session secret: %w", err)
		}
		c.Session.Secret = secret
		c.Session.SecretGenerated = true
	}

	return nil
}

// Credentials はログイン照合に使う資格情報を返します。
// ユーザー名、またはパスワード（ハッシュ含む）が無い場合は ErrCredentialsNotConfigured を返します。
func (c *Config) Credentials() (CredentialsConfig, error) {
	creds := c.Authentication.DefaultCredentials
	if creds.Username == "" || (creds.Password == "" && creds.PasswordHash == "") {
		return CredentialsConfig{}, ErrCredentialsNotConfigured
	}
	return creds, nil
}

// AllowedOrigins は CORS 許可オリジンを配列で返します。
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORS.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
