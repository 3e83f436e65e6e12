package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Env != "development" {
		t.Errorf("expected development env, got %q", cfg.Env)
	}
	if cfg.APIBaseURL != devBaseURL {
		t.Errorf("expected dev base URL, got %q", cfg.APIBaseURL)
	}
	if cfg.CacheRetries != 2 {
		t.Errorf("expected 2 cache retries, got %d", cfg.CacheRetries)
	}
	if cfg.HTTPTimeout != 20*time.Second {
		t.Errorf("expected 20s timeout, got %s", cfg.HTTPTimeout)
	}
}

func TestLoadProductionBaseURL(t *testing.T) {
	t.Setenv("ENV", "production")

	cfg := Load()
	if cfg.APIBaseURL != productionBaseURL {
		t.Errorf("expected production base URL, got %q", cfg.APIBaseURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://10.0.2.2:3000")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("CACHE_RETRIES", "0")

	cfg := Load()
	if cfg.APIBaseURL != "http://10.0.2.2:3000" {
		t.Errorf("unexpected base URL %q", cfg.APIBaseURL)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("unexpected timeout %s", cfg.HTTPTimeout)
	}
	if cfg.CacheRetries != 0 {
		t.Errorf("unexpected retries %d", cfg.CacheRetries)
	}
}
