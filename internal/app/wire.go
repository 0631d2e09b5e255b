// Package app assembles the intake components from configuration.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/provider"
	"github.com/ashureev/talentscout/internal/store"
)

// OpenRepository opens the configured submission backend.
func OpenRepository(cfg *config.Config, logger *slog.Logger) (store.Repository, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		repo, err := store.NewJSONFile(cfg.CandidatesPath, logger)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendSQLite:
		repo, err := store.NewSQLite(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown submission backend %q", cfg.Backend)
	}
}

// NewProvider returns the static provider when static questions are
// configured, and the OpenRouter provider otherwise.
func NewProvider(cfg *config.Config, logger *slog.Logger) provider.QuestionProvider {
	if len(cfg.Provider.StaticQuestions) > 0 {
		logger.Info("Using static question provider", "count", len(cfg.Provider.StaticQuestions))
		return provider.Static{Questions: cfg.Provider.StaticQuestions}
	}
	logger.Info("Using OpenRouter question provider", "model", cfg.Provider.Model, "base_url", cfg.Provider.BaseURL)
	return provider.NewOpenRouter(provider.OpenRouterConfig{
		APIKey:        cfg.Provider.APIKey,
		BaseURL:       cfg.Provider.BaseURL,
		Model:         cfg.Provider.Model,
		QuestionCount: cfg.Provider.QuestionCount,
		Timeout:       cfg.Provider.Timeout,
	}, logger)
}

// Questions returns the fixed catalog with any configured prompt wording.
func Questions(cfg *config.Config) ([]domain.FixedQuestion, error) {
	overrides, err := config.LoadPromptOverrides(cfg.QuestionsFile)
	if err != nil {
		return nil, err
	}
	return domain.WithPrompts(domain.DefaultQuestions(), overrides), nil
}

// NewLogger returns a JSON logger on stdout at the configured level.
func NewLogger(cfg *config.Config) *slog.Logger {
	return NewLoggerTo(os.Stdout, cfg)
}

// NewLoggerTo returns a JSON logger writing to w at the configured level.
func NewLoggerTo(w io.Writer, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}
