package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.EngineMode != "auto" {
		t.Fatalf("EngineMode = %q, want %q", cfg.EngineMode, "auto")
	}
	if cfg.EngineHTTPURL != "" {
		t.Fatalf("EngineHTTPURL = %q, want empty default", cfg.EngineHTTPURL)
	}
	if cfg.SessionInactivityTimeout != time.Hour {
		t.Fatalf("SessionInactivityTimeout = %v, want 1h", cfg.SessionInactivityTimeout)
	}
	if cfg.StageTimeout != 45*time.Second {
		t.Fatalf("StageTimeout = %v, want 45s", cfg.StageTimeout)
	}
	if cfg.KnowledgeContextLimit != 3 {
		t.Fatalf("KnowledgeContextLimit = %d, want 3", cfg.KnowledgeContextLimit)
	}
}

func TestLoadRejectsInvalidEngineMode(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("ENGINE_MODE", "crew")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for invalid ENGINE_MODE")
	}
}

func TestLoadRejectsTinyInactivityTimeout(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_SESSION_INACTIVITY_TIMEOUT", "2s")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error for sub-5s inactivity timeout")
	}
}

func TestLoadUsesExplicitEngineHTTPURL(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("ENGINE_MODE", "http")
	t.Setenv("ENGINE_HTTP_URL", "http://localhost:7777/stages")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.EngineHTTPURL != "http://localhost:7777/stages" {
		t.Fatalf("EngineHTTPURL = %q, want explicit value", cfg.EngineHTTPURL)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_SESSION_INACTIVITY_TIMEOUT",
		"APP_SESSION_SWEEP_INTERVAL",
		"APP_METRICS_NAMESPACE",
		"APP_ALLOW_ANY_ORIGIN",
		"APP_STAGE_TIMEOUT",
		"ENGINE_MODE",
		"ENGINE_HTTP_URL",
		"ROUTING_RULES_PATH",
		"DATABASE_URL",
		"KNOWLEDGE_CONTEXT_LIMIT",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
