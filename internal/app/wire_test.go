package app

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashureev/talentscout/internal/config"
	"github.com/ashureev/talentscout/internal/provider"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenRepositoryBackends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{config.BackendSQLite, config.BackendJSON} {
		cfg := &config.Config{
			Backend:        backend,
			DBPath:         filepath.Join(dir, "candidates.db"),
			CandidatesPath: filepath.Join(dir, "candidates.json"),
		}
		repo, err := OpenRepository(cfg, quietLogger())
		if err != nil {
			t.Fatalf("OpenRepository(%s) failed: %v", backend, err)
		}
		if repo.Name() != backend {
			t.Errorf("backend name = %q, want %q", repo.Name(), backend)
		}
		_ = repo.Close()
	}

	if _, err := OpenRepository(&config.Config{Backend: "mongo"}, quietLogger()); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewProviderPrefersStatic(t *testing.T) {
	cfg := &config.Config{Provider: config.ProviderConfig{StaticQuestions: []string{"Q1"}}}
	if _, ok := NewProvider(cfg, quietLogger()).(provider.Static); !ok {
		t.Error("expected static provider")
	}
	cfg = &config.Config{Provider: config.ProviderConfig{APIKey: "k"}}
	if _, ok := NewProvider(cfg, quietLogger()).(*provider.OpenRouter); !ok {
		t.Error("expected OpenRouter provider")
	}
}

func TestQuestionsAppliesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	if err := os.WriteFile(path, []byte("role: Which role are you after?\n"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	qs, err := Questions(&config.Config{QuestionsFile: path})
	if err != nil {
		t.Fatalf("Questions failed: %v", err)
	}
	if qs[5].Prompt != "Which role are you after?" {
		t.Errorf("override not applied: %q", qs[5].Prompt)
	}
	if qs[0].Prompt != "What's your full name?" {
		t.Errorf("default prompt changed: %q", qs[0].Prompt)
	}
}

func TestNewLoggerToHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, &config.Config{LogLevel: slog.LevelWarn})

	logger.Info("dropped")
	logger.Warn("kept", "session_id", "s-1")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"kept"`) || !strings.Contains(out, `"session_id":"s-1"`) {
		t.Errorf("expected JSON warn record, got %s", out)
	}
}
