package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Backend != BackendSQLite || cfg.DBPath != "./data/candidates.db" {
		t.Errorf("unexpected backend %q at %q", cfg.Backend, cfg.DBPath)
	}
	if cfg.SessionTTL != time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	p := cfg.Provider
	if p.QuestionCount != 3 || p.Timeout != 30*time.Second || p.MaxAttempts != 0 {
		t.Errorf("unexpected provider defaults: %+v", p)
	}
	if p.Model != "mistralai/mistral-7b-instruct" {
		t.Errorf("Model = %q", p.Model)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUBMISSION_BACKEND", "JSON")
	t.Setenv("CANDIDATES_PATH", "/tmp/c.json")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PROVIDER_TIMEOUT", "5s")
	t.Setenv("GENERATE_MAX_ATTEMPTS", "4")
	t.Setenv("STATIC_QUESTIONS", "Q1\n\n  Q2  \n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != BackendJSON || cfg.CandidatesPath != "/tmp/c.json" {
		t.Errorf("unexpected backend %q at %q", cfg.Backend, cfg.CandidatesPath)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.Provider.Timeout != 5*time.Second || cfg.Provider.MaxAttempts != 4 {
		t.Errorf("unexpected provider config: %+v", cfg.Provider)
	}
	if diff := cmp.Diff([]string{"Q1", "Q2"}, cfg.Provider.StaticQuestions); diff != "" {
		t.Errorf("static questions mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing api key", map[string]string{}},
		{"unknown backend", map[string]string{"OPENROUTER_API_KEY": "k", "SUBMISSION_BACKEND": "postgres"}},
		{"negative budget", map[string]string{"OPENROUTER_API_KEY": "k", "GENERATE_MAX_ATTEMPTS": "-1"}},
		{"empty port", map[string]string{"OPENROUTER_API_KEY": "k", "PORT": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENROUTER_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIsDevelopment(t *testing.T) {
	if !(&Config{}).IsDevelopment() {
		t.Error("empty FRONTEND_URL should be development")
	}
	if (&Config{FrontendURL: "https://jobs.example.com"}).IsDevelopment() {
		t.Error("public origin should not be development")
	}
}

func TestLoadPromptOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	content := "name: \"May I have your name?\"\ntech_stack: Which technologies do you use?\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := LoadPromptOverrides(path)
	if err != nil {
		t.Fatalf("LoadPromptOverrides failed: %v", err)
	}
	want := map[string]string{
		"name":       "May I have your name?",
		"tech_stack": "Which technologies do you use?",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("overrides mismatch (-want +got):\n%s", diff)
	}

	if got, err := LoadPromptOverrides(""); err != nil || got != nil {
		t.Errorf("empty path: got %v, %v", got, err)
	}
	if _, err := LoadPromptOverrides(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateStorageIgnoresProvider(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("STATIC_QUESTIONS", "")

	cfg := Read()
	if err := cfg.ValidateStorage(); err != nil {
		t.Fatalf("ValidateStorage failed: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should still require provider credentials")
	}

	cfg.Backend = BackendJSON
	cfg.CandidatesPath = ""
	if err := cfg.ValidateStorage(); err == nil {
		t.Error("expected error for empty CANDIDATES_PATH")
	}
}
