package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken string
	FacultyChatID int64  // 0 disables faculty notifications
	DatabaseURL   string // Optional: Postgres teacher directory instead of the built-in seed
	MetricsAddr   string // Optional: e.g. ":9090"
	LogLevel      string
	Environment   string

	GeminiAPIKey      string // Empty disables draft analysis (not an error)
	GeminiModel       string // Empty selects gemini.DefaultModel
	GeminiBaseURL     string // Empty selects the SDK's endpoint
	AnalysisTimeout   time.Duration
	AnalysisCacheSize int
	AnalysisCacheTTL  time.Duration

	SimulatedResponseDelay       time.Duration
	SimulatedResponseProbability *float64 // nil selects app.DefaultSimulatedProbability
	CronSpecDigest               string // Daily dashboard digest to the faculty chat
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	if raw := os.Getenv("FACULTY_CHAT_ID"); raw != "" {
		cfg.FacultyChatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid FACULTY_CHAT_ID: %w", err)
		}
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.MetricsAddr = os.Getenv("METRICS_ADDR")

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("API_KEY") // Legacy name used by the web dashboard
	}
	// Empty model or base URL means the analysis client's own default.
	cfg.GeminiModel = os.Getenv("GEMINI_MODEL")
	cfg.GeminiBaseURL = os.Getenv("GEMINI_BASE_URL")

	if cfg.AnalysisTimeout, err = durationEnv("ANALYSIS_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.AnalysisCacheTTL, err = durationEnv("ANALYSIS_CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	cfg.AnalysisCacheSize = 128
	if raw := os.Getenv("ANALYSIS_CACHE_SIZE"); raw != "" {
		cfg.AnalysisCacheSize, err = strconv.Atoi(raw)
		if err != nil || cfg.AnalysisCacheSize <= 0 {
			return nil, fmt.Errorf("invalid ANALYSIS_CACHE_SIZE %q", raw)
		}
	}

	if cfg.SimulatedResponseDelay, err = durationEnv("SIMULATED_RESPONSE_DELAY", 5*time.Second); err != nil {
		return nil, err
	}
	if raw := os.Getenv("SIMULATED_RESPONSE_PROBABILITY"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SIMULATED_RESPONSE_PROBABILITY: %w", err)
		}
		if p < 0 || p > 1 {
			return nil, fmt.Errorf("SIMULATED_RESPONSE_PROBABILITY must be within [0, 1], got %v", p)
		}
		cfg.SimulatedResponseProbability = &p
	}

	cfg.CronSpecDigest = os.Getenv("CRON_SPEC_DIGEST")
	if cfg.CronSpecDigest == "" {
		cfg.CronSpecDigest = "0 18 * * *" // Default: 6 PM daily
	}

	return cfg, nil
}

// AnalysisEnabled reports whether a draft-analysis credential is configured.
func (c *AppConfig) AnalysisEnabled() bool {
	return c.GeminiAPIKey != ""
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}
