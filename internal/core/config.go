package core

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration. The assist key is optional:
// without it every operation runs on the local heuristics alone.
type Config struct {
	LogLevel      string        // debug, info, warn, error
	AssistAPIKey  string        // enables the external assist path when set
	AssistBaseURL string        // OpenRouter-compatible endpoint
	AssistModel   string        // model identifier for assist calls
	AssistTimeout time.Duration // HTTP timeout for assist calls
	RuleStorePath string        // YAML file holding accepted rules
	WeightsPreset string        // named prioritization profile
}

// LoadConfig loads configuration from the environment, reading a .env file
// first when one exists.
func LoadConfig() (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	logLevel := getEnvOrDefault("TABCAST_LOG_LEVEL", "info")
	if os.Getenv("DEBUG") == "1" {
		logLevel = "debug"
	}

	timeout := 30 * time.Second
	if raw := os.Getenv("TABCAST_ASSIST_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			timeout = d
		}
	}

	return &Config{
		LogLevel:      logLevel,
		AssistAPIKey:  os.Getenv("TABCAST_ASSIST_API_KEY"),
		AssistBaseURL: getEnvOrDefault("TABCAST_ASSIST_BASE_URL", "https://openrouter.ai/api/v1"),
		AssistModel:   getEnvOrDefault("TABCAST_ASSIST_MODEL", "anthropic/claude-3.5-sonnet"),
		AssistTimeout: timeout,
		RuleStorePath: getEnvOrDefault("TABCAST_RULES_PATH", "rules.yaml"),
		WeightsPreset: getEnvOrDefault("TABCAST_WEIGHTS_PRESET", "balanced"),
	}, nil
}

// AssistEnabled reports whether the external assist path may be attempted.
func (c *Config) AssistEnabled() bool { return c.AssistAPIKey != "" }

// getEnvOrDefault returns the value of an environment variable or a
// default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
