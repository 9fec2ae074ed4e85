package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the support engine service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	SessionSweepInterval     time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	EngineMode    string
	EngineHTTPURL string
	StageTimeout  time.Duration

	RoutingRulesPath string

	DatabaseURL           string
	KnowledgeContextLimit int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "caseflow"),
		AllowAnyOrigin:   false,
		EngineMode:       envOrDefault("ENGINE_MODE", "auto"),
		EngineHTTPURL:    trimmedEnv("ENGINE_HTTP_URL"),
		RoutingRulesPath: envOrDefault("ROUTING_RULES_PATH", "data/team_routing_rules.json"),
		DatabaseURL:      trimmedEnv("DATABASE_URL"),

		ShutdownTimeout: 15 * time.Second,
		// Idle conversations are swept after an hour; sweeping is housekeeping,
		// a swept conversation simply starts fresh on next use.
		SessionInactivityTimeout: time.Hour,
		SessionSweepInterval:     time.Minute,
		StageTimeout:             45 * time.Second,
		KnowledgeContextLimit:    3,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("APP_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionSweepInterval, err = durationFromEnv("APP_SESSION_SWEEP_INTERVAL", cfg.SessionSweepInterval)
	if err != nil {
		return Config{}, err
	}
	cfg.StageTimeout, err = durationFromEnv("APP_STAGE_TIMEOUT", cfg.StageTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.KnowledgeContextLimit, err = intFromEnv("KNOWLEDGE_CONTEXT_LIMIT", cfg.KnowledgeContextLimit)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("APP_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.SessionSweepInterval <= 0 {
		return Config{}, fmt.Errorf("APP_SESSION_SWEEP_INTERVAL must be positive")
	}
	if cfg.StageTimeout <= 0 {
		return Config{}, fmt.Errorf("APP_STAGE_TIMEOUT must be positive")
	}
	if cfg.KnowledgeContextLimit < 0 {
		return Config{}, fmt.Errorf("KNOWLEDGE_CONTEXT_LIMIT must be >= 0")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.EngineMode)) {
	case "auto", "http", "mock":
	default:
		return Config{}, fmt.Errorf("invalid ENGINE_MODE: %q (expected auto|http|mock)", cfg.EngineMode)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func trimmedEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := trimmedEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(trimmedEnv(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
