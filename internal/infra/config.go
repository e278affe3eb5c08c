package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv            string
	Port              string
	DatabaseURL       string
	StoragePath       string
	GenerationAPIKey  string
	GenerationBaseURL string
	GenerationModel   string
	AllowSynthetic    bool

	// GenerationDelay is the default pause between generation calls; the
	// settings table may override it at runtime.
	GenerationDelay   time.Duration
	QueuePollInterval time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		StoragePath:       getEnv("STORAGE_PATH", "./storage"),
		GenerationAPIKey:  os.Getenv("GENERATION_API_KEY"),
		GenerationBaseURL: getEnv("GENERATION_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GenerationModel:   getEnv("GENERATION_MODEL", "gemini-2.5-flash"),
		AllowSynthetic:    getEnvInt("GENERATION_ALLOW_SYNTHETIC", 0) == 1,
		GenerationDelay:   time.Millisecond * time.Duration(getEnvInt("GENERATION_DELAY_MS", 1500)),
		QueuePollInterval: time.Second * time.Duration(getEnvInt("QUEUE_POLL_INTERVAL_SECONDS", 2)),
		HTTPReadTimeout:   time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:  time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:   time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSOrigins:       splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GenerationDelay < 0 {
		cfg.GenerationDelay = 0
	}
	if cfg.QueuePollInterval <= 0 {
		cfg.QueuePollInterval = 2 * time.Second
	}

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
