package config

import (
	"testing"
	"time"
)

// clearEnv blanks every variable Load reads so a developer's .env or shell does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TELEGRAM_TOKEN", "FACULTY_CHAT_ID", "DATABASE_URL", "METRICS_ADDR", "LOG_LEVEL", "ENVIRONMENT",
		"GEMINI_API_KEY", "API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "ANALYSIS_TIMEOUT",
		"ANALYSIS_CACHE_SIZE", "ANALYSIS_CACHE_TTL", "SIMULATED_RESPONSE_DELAY",
		"SIMULATED_RESPONSE_PROBABILITY", "CRON_SPEC_DIGEST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.AnalysisEnabled() {
		t.Error("analysis should be disabled without GEMINI_API_KEY")
	}
	if cfg.GeminiModel != "" || cfg.GeminiBaseURL != "" {
		t.Errorf("GeminiModel/GeminiBaseURL = %q/%q, want empty so the client defaults apply", cfg.GeminiModel, cfg.GeminiBaseURL)
	}
	if cfg.SimulatedResponseDelay != 5*time.Second {
		t.Errorf("SimulatedResponseDelay = %v, want 5s", cfg.SimulatedResponseDelay)
	}
	if cfg.SimulatedResponseProbability != nil {
		t.Errorf("SimulatedResponseProbability = %v, want nil so the simulator default applies", *cfg.SimulatedResponseProbability)
	}
	if cfg.AnalysisCacheSize != 128 || cfg.AnalysisCacheTTL != 10*time.Minute {
		t.Errorf("cache = %d/%v", cfg.AnalysisCacheSize, cfg.AnalysisCacheTTL)
	}
	if cfg.FacultyChatID != 0 {
		t.Errorf("FacultyChatID = %d, want 0", cfg.FacultyChatID)
	}
}

func TestLoad_MissingToken(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error without TELEGRAM_TOKEN")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("FACULTY_CHAT_ID", "-100123")
	t.Setenv("SIMULATED_RESPONSE_DELAY", "250ms")
	t.Setenv("SIMULATED_RESPONSE_PROBABILITY", "1")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.AnalysisEnabled() {
		t.Error("analysis should be enabled")
	}
	if cfg.FacultyChatID != -100123 {
		t.Errorf("FacultyChatID = %d", cfg.FacultyChatID)
	}
	if cfg.SimulatedResponseDelay != 250*time.Millisecond {
		t.Errorf("SimulatedResponseDelay = %v", cfg.SimulatedResponseDelay)
	}
	if p := cfg.SimulatedResponseProbability; p == nil || *p != 1 {
		t.Errorf("SimulatedResponseProbability = %v, want 1", p)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoad_LegacyAPIKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("API_KEY", "legacy")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeminiAPIKey != "legacy" {
		t.Errorf("GeminiAPIKey = %q, want legacy", cfg.GeminiAPIKey)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"FACULTY_CHAT_ID", "abc"},
		{"SIMULATED_RESPONSE_DELAY", "soon"},
		{"SIMULATED_RESPONSE_DELAY", "-1s"},
		{"SIMULATED_RESPONSE_PROBABILITY", "1.5"},
		{"ANALYSIS_CACHE_SIZE", "0"},
		{"ANALYSIS_TIMEOUT", "never"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("TELEGRAM_TOKEN", "token")
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
