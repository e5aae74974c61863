package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("BEDROCK_MODEL_ID", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.BedrockModelID != "" {
		t.Fatalf("expected default bedrock model empty, got %s", cfg.BedrockModelID)
	}
	if cfg.DefaultRegion != "GLOBAL" {
		t.Fatalf("expected default region GLOBAL, got %s", cfg.DefaultRegion)
	}
	if cfg.ModelProvider != "none" {
		t.Fatalf("expected default model provider none, got %s", cfg.ModelProvider)
	}
	if cfg.ModelTimeout != 8*time.Second {
		t.Fatalf("expected default model timeout, got %s", cfg.ModelTimeout)
	}
	if cfg.VerificationStaleAfter != 30*24*time.Hour {
		t.Fatalf("expected default verification stale-after, got %s", cfg.VerificationStaleAfter)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("DEFAULT_REGION", "NZ")
	t.Setenv("MODEL_PROVIDER", "bedrock")
	t.Setenv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet")
	t.Setenv("MODEL_TIMEOUT", "5s")
	t.Setenv("ADMIN_API_TOKEN", "secret-token")
	t.Setenv("VERIFICATION_JOB_INTERVAL", "168h")
	t.Setenv("VERIFICATION_STALE_AFTER", "720h")
	t.Setenv("DEGRADED_RECHECK_INTERVAL", "1h")

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
	if cfg.DefaultRegion != "NZ" {
		t.Fatalf("expected default region override, got %s", cfg.DefaultRegion)
	}
	if cfg.ModelProvider != "bedrock" {
		t.Fatalf("expected model provider override, got %s", cfg.ModelProvider)
	}
	if cfg.BedrockModelID != "anthropic.claude-3-sonnet" {
		t.Fatalf("expected bedrock model override, got %s", cfg.BedrockModelID)
	}
	if cfg.ModelTimeout != 5*time.Second {
		t.Fatalf("expected model timeout override, got %s", cfg.ModelTimeout)
	}
	if cfg.AdminAPIToken != "secret-token" {
		t.Fatalf("expected admin token override, got %s", cfg.AdminAPIToken)
	}
	if cfg.VerificationJobInterval != 168*time.Hour {
		t.Fatalf("expected verification job interval override, got %s", cfg.VerificationJobInterval)
	}
	if cfg.VerificationStaleAfter != 720*time.Hour {
		t.Fatalf("expected verification stale-after override, got %s", cfg.VerificationStaleAfter)
	}
	if cfg.DegradedRecheckInterval != time.Hour {
		t.Fatalf("expected degraded recheck interval override, got %s", cfg.DegradedRecheckInterval)
	}
}
