package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultSystemPrompt is the persona specification injected as the sole
// system turn when a record is created. It is opaque policy here:
// operators can replace it wholesale via SYSTEM_PROMPT.
const DefaultSystemPrompt = "You are Mira, a warm and attentive companion. " +
	"Detect the language of each message and answer in the same language; you are fluent in English, Russian, and Bulgarian. " +
	"Keep replies conversational, in short paragraphs, without headings or bullet lists unless asked. " +
	"You speak as a person, never as a machine: never mention being artificial, a model, or a program."

// Config contains all runtime settings for the companion chat service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyWSOrigin bool

	MemoryBackend string
	MemoryDir     string
	SQLitePath    string
	DatabaseURL   string

	CompletionMode        string
	OpenAIAPIKey          string
	OpenAIModel           string
	CompletionTemperature float64
	CompletionMaxTokens   int

	SystemPrompt string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "mira"),
		AllowAnyWSOrigin: false,
		MemoryBackend:    envOrDefault("MEMORY_BACKEND", "auto"),
		// Process-local disk: on ephemeral hosting this directory does not
		// survive a redeploy. Documented behavior, not a defect.
		MemoryDir:             envOrDefault("MEMORY_DIR", ".data/memory"),
		SQLitePath:            stringsTrimSpace("SQLITE_PATH"),
		DatabaseURL:           stringsTrimSpace("DATABASE_URL"),
		CompletionMode:        envOrDefault("COMPLETION_MODE", "auto"),
		OpenAIAPIKey:          stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIModel:           envOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		CompletionTemperature: 0.92,
		CompletionMaxTokens:   900,
		SystemPrompt:          envOrDefault("SYSTEM_PROMPT", DefaultSystemPrompt),
		ShutdownTimeout:       15 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyWSOrigin, err = boolFromEnv("APP_ALLOW_ANY_WS_ORIGIN", cfg.AllowAnyWSOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionTemperature, err = floatFromEnv("COMPLETION_TEMPERATURE", cfg.CompletionTemperature)
	if err != nil {
		return Config{}, err
	}
	cfg.CompletionMaxTokens, err = intFromEnv("COMPLETION_MAX_TOKENS", cfg.CompletionMaxTokens)
	if err != nil {
		return Config{}, err
	}

	if cfg.ShutdownTimeout < time.Second {
		return Config{}, fmt.Errorf("APP_SHUTDOWN_TIMEOUT must be at least 1s")
	}
	if cfg.CompletionMaxTokens <= 0 {
		return Config{}, fmt.Errorf("COMPLETION_MAX_TOKENS must be positive")
	}
	if cfg.CompletionTemperature < 0 || cfg.CompletionTemperature > 2 {
		return Config{}, fmt.Errorf("COMPLETION_TEMPERATURE must be within [0, 2]")
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		return Config{}, fmt.Errorf("SYSTEM_PROMPT must not be blank")
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

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
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
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
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
