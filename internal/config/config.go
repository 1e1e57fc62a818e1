package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// DefaultEnvFile は起動時に読み込む任意の環境変数ファイル。
const DefaultEnvFile = ".env"

// 解析モード
const (
	ParseModePattern = "pattern"
	ParseModeDOM     = "dom"
)

// DefaultUserAgent は上流へのリクエストに付与するブラウザ相当のUser-Agent。
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Server
	ServerPort        string `validate:"required,numeric"`
	LogLevel          string `validate:"oneof=debug info warn error"`
	CORSAllowedOrigin string `validate:"required"`
	// APIPathPrefix を指定すると /scrape と /download-csv をその配下にも公開する（例: /api）。
	APIPathPrefix string `validate:"omitempty,startswith=/"`

	// Upstream
	RedditBaseURL      string        `validate:"required,url"`
	RedditOldBaseURL   string        `validate:"required,url"`
	RedditUserAgent    string        `validate:"required"`
	FetchTimeout       time.Duration `validate:"gt=0"`
	FetchMaxSize       int64         `validate:"gt=0"`
	UpstreamRateLimit  float64       `validate:"gte=0"`
	UpstreamBurst      int           `validate:"gte=1"`
	UpstreamSafeClient bool

	// Scrape
	DefaultSubreddit        string `validate:"required,max=64"`
	DefaultPostLimit        int    `validate:"gte=1,ltefield=MaxPostLimit"`
	MaxPostLimit            int    `validate:"gte=1"`
	DefaultCommentsPerPost  int    `validate:"gte=1,ltefield=MaxCommentsPerPost"`
	MaxCommentsPerPost      int    `validate:"gte=1"`
	PageSize                int    `validate:"gte=1,lte=100"`
	MaxPages                int    `validate:"gte=1"`
	OverfetchFactor         int    `validate:"gte=1"`
	CommentFetchConcurrency int    `validate:"gte=1,lte=16"`
	ParseMode               string `validate:"oneof=pattern dom"`
}

// Load はカレントディレクトリの .env（存在する場合）と環境変数からConfigを読み込む。
func Load() (*Config, error) {
	return LoadWithEnvFile(DefaultEnvFile)
}

// LoadWithEnvFile はpathの環境変数ファイルを読み込んだ上でConfigを組み立てる。
// ファイルが存在しない場合は環境変数だけを使う。既に設定済みの環境変数はファイルで上書きしない。
// 値が不正な場合はエラーを返す。
func LoadWithEnvFile(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	cfg := &Config{
		ServerPort:        getEnvString("SERVER_PORT", "8080"),
		LogLevel:          strings.ToLower(getEnvString("LOG_LEVEL", "info")),
		CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", "*"),
		APIPathPrefix:     getEnvString("API_PATH_PREFIX", ""),

		RedditBaseURL:      getEnvString("REDDIT_BASE_URL", "https://www.reddit.com"),
		RedditOldBaseURL:   getEnvString("REDDIT_OLD_BASE_URL", "https://old.reddit.com"),
		RedditUserAgent:    getEnvString("REDDIT_USER_AGENT", DefaultUserAgent),
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 30*time.Second),
		FetchMaxSize:       getEnvInt64("FETCH_MAX_SIZE", 10485760),
		UpstreamRateLimit:  getEnvFloat("UPSTREAM_RATE_LIMIT", 0),
		UpstreamBurst:      getEnvInt("UPSTREAM_BURST", 1),
		UpstreamSafeClient: getEnvBool("UPSTREAM_SAFE_CLIENT", true),

		DefaultSubreddit:        getEnvString("DEFAULT_SUBREDDIT", "Overwatch"),
		DefaultPostLimit:        getEnvInt("DEFAULT_POST_LIMIT", 10),
		MaxPostLimit:            getEnvInt("MAX_POST_LIMIT", 50),
		DefaultCommentsPerPost:  getEnvInt("DEFAULT_COMMENTS_PER_POST", 20),
		MaxCommentsPerPost:      getEnvInt("MAX_COMMENTS_PER_POST", 50),
		PageSize:                getEnvInt("PAGE_SIZE", 100),
		MaxPages:                getEnvInt("MAX_PAGES", 10),
		OverfetchFactor:         getEnvInt("OVERFETCH_FACTOR", 3),
		CommentFetchConcurrency: getEnvInt("COMMENT_FETCH_CONCURRENCY", 1),
		ParseMode:               strings.ToLower(getEnvString("PARSE_MODE", ParseModePattern)),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
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

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
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
