// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Submission backends.
const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	LogLevel       slog.Level
	Backend        string
	DBPath         string
	CandidatesPath string
	SessionTTL     time.Duration
	QuestionsFile  string
	Provider       ProviderConfig
}

// ProviderConfig controls question generation.
type ProviderConfig struct {
	APIKey          string
	BaseURL         string
	Model           string
	QuestionCount   int
	Timeout         time.Duration
	MaxAttempts     int
	StaticQuestions []string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Read reads configuration from environment variables without validation.
func Read() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		Backend:        strings.ToLower(getEnv("SUBMISSION_BACKEND", BackendSQLite)),
		DBPath:         getEnv("DB_PATH", "./data/candidates.db"),
		CandidatesPath: getEnv("CANDIDATES_PATH", "./candidates.json"),
		SessionTTL:     getEnvDuration("SESSION_TTL", 60*time.Minute),
		QuestionsFile:  getEnv("QUESTIONS_FILE", ""),
		Provider: ProviderConfig{
			APIKey:          getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:         getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			Model:           getEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct"),
			QuestionCount:   getEnvInt("QUESTION_COUNT", 3),
			Timeout:         getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
			MaxAttempts:     getEnvInt("GENERATE_MAX_ATTEMPTS", 0),
			StaticQuestions: splitLines(getEnv("STATIC_QUESTIONS", "")),
		},
	}
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be > 0")
	}
	if c.Provider.QuestionCount <= 0 {
		return fmt.Errorf("QUESTION_COUNT must be > 0")
	}
	if c.Provider.Timeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be > 0")
	}
	if c.Provider.MaxAttempts < 0 {
		return fmt.Errorf("GENERATE_MAX_ATTEMPTS must be >= 0")
	}
	if len(c.Provider.StaticQuestions) == 0 && c.Provider.APIKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY is required unless STATIC_QUESTIONS is set")
	}
	return nil
}

// ValidateStorage checks only the submission backend settings.
func (c *Config) ValidateStorage() error {
	switch c.Backend {
	case BackendSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
	case BackendJSON:
		if c.CandidatesPath == "" {
			return fmt.Errorf("CANDIDATES_PATH cannot be empty")
		}
	default:
		return fmt.Errorf("SUBMISSION_BACKEND must be %q or %q, got %q", BackendSQLite, BackendJSON, c.Backend)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

// LoadPromptOverrides reads a YAML mapping of field key to prompt wording.
// An empty path yields no overrides.
func LoadPromptOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}
	return overrides, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
