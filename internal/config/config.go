// Package config loads client configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	devBaseURL        = "http://localhost:3000"
	productionBaseURL = "https://api.barberpro.app"
)

// Config holds application configuration
type Config struct {
	Env           string
	APIBaseURL    string
	LogLevel      string
	HTTPTimeout   time.Duration
	CredentialDir string
	CacheRetries  int
	MetricsAddr   string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	env := getEnv("ENV", "development")
	return &Config{
		Env:           env,
		APIBaseURL:    getEnv("API_BASE_URL", defaultBaseURL(env)),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		HTTPTimeout:   getEnvAsDuration("HTTP_TIMEOUT", 20*time.Second),
		CredentialDir: getEnv("CREDENTIAL_DIR", defaultCredentialDir()),
		CacheRetries:  getEnvAsInt("CACHE_RETRIES", 2),
		MetricsAddr:   getEnv("METRICS_ADDR", ""),
	}
}

func defaultBaseURL(env string) string {
	if env == "production" {
		return productionBaseURL
	}
	return devBaseURL
}

func defaultCredentialDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".barberpro"
	}
	return filepath.Join(home, ".barberpro")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
