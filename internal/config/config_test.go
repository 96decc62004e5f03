package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("MATCH_LIMIT", "")
	t.Setenv("MATCH_CACHE_TTL", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.MatchLimit != 5 {
		t.Fatalf("expected default match limit 5, got %d", cfg.MatchLimit)
	}
	if cfg.MatchCacheTTL != 2*time.Minute {
		t.Fatalf("expected default match cache ttl, got %s", cfg.MatchCacheTTL)
	}
	if !cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue enabled by default")
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Fatalf("expected default email provider sendgrid, got %s", cfg.EmailProvider)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("MATCH_LIMIT", "3")
	t.Setenv("MATCH_CACHE_TTL", "45s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.physiobook.com, https://admin.physiobook.com")
	t.Setenv("USE_MEMORY_QUEUE", "false")
	t.Setenv("REMINDER_QUEUE_URL", "https://sqs.example/reminders")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Fatalf("expected env override, got %s", cfg.Env)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected db override, got %s", cfg.DatabaseURL)
	}
	if cfg.MatchLimit != 3 {
		t.Fatalf("expected match limit override, got %d", cfg.MatchLimit)
	}
	if cfg.MatchCacheTTL != 45*time.Second {
		t.Fatalf("expected cache ttl override, got %s", cfg.MatchCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://admin.physiobook.com" {
		t.Fatalf("expected trimmed cors origins, got %v", cfg.CORSAllowedOrigins)
	}
	if cfg.UseMemoryQueue {
		t.Fatalf("expected memory queue disabled")
	}
	if cfg.ReminderQueueURL != "https://sqs.example/reminders" {
		t.Fatalf("expected queue url override, got %s", cfg.ReminderQueueURL)
	}
}
