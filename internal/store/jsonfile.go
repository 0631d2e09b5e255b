package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/ashureev/talentscout/internal/domain"
)

// JSONFileStore keeps every record in one JSON array file. Content that is
// not a JSON array is treated as an empty history; the bad file is kept next
// to the store as "<name>.corrupt.<random>". Any other read failure is
// returned and the file is left untouched.
type JSONFileStore struct {
	path     string
	mu       sync.Mutex
	logger   *slog.Logger
	readFile func(name string) ([]byte, error)
}

// NewJSONFile creates a store writing to path.
func NewJSONFile(path string, logger *slog.Logger) (*JSONFileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create candidates directory: %w", err)
	}
	return &JSONFileStore{path: path, logger: logger, readFile: os.ReadFile}, nil
}

// Name implements Sink.
func (s *JSONFileStore) Name() string { return "json" }

// Ping checks that the directory holding the file is reachable.
func (s *JSONFileStore) Ping(_ context.Context) error {
	if _, err := os.Stat(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("stat candidates directory: %w", err)
	}
	return nil
}

// Close implements Repository.
func (s *JSONFileStore) Close() error { return nil }

// Append reads the stored array, appends the record and rewrites the file
// atomically. Existing elements keep their content; only whitespace changes.
func (s *JSONFileStore) Append(ctx context.Context, sub Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.readRaw()
	if err != nil {
		return err
	}
	rec, err := json.Marshal(sub.Record)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}
	existing = append(existing, rec)

	var buf bytes.Buffer
	buf.WriteString("[")
	for i, raw := range existing {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		buf.Write(raw)
	}
	buf.WriteString("\n]\n")

	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("write candidates: %w", err)
	}
	s.logger.Info("Candidate appended", "backend", s.Name(), "session_id", sub.SessionID, "total", len(existing))
	return nil
}

// List decodes every stored record.
func (s *JSONFileStore) List(ctx context.Context) ([]domain.CandidateRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.readRaw()
	if err != nil {
		return nil, err
	}
	records := make([]domain.CandidateRecord, 0, len(raw))
	for i, r := range raw {
		var rec domain.CandidateRecord
		if err := json.Unmarshal(r, &rec); err != nil {
			return nil, fmt.Errorf("decode candidate %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// readRaw returns the stored elements. A missing file or content that is not
// a JSON array yields nil; any other read error is returned. Caller holds s.mu.
func (s *JSONFileStore) readRaw() ([]json.RawMessage, error) {
	data, err := s.readFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read candidates: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		backup, backupErr := s.preserveCorrupt(data)
		if backupErr != nil {
			s.logger.Error("Failed to preserve corrupt candidates file", "path", s.path, "error", backupErr)
		}
		s.logger.Warn("Candidates file is not a JSON array, starting from empty history",
			"path", s.path,
			"backup", backup,
			"error", err)
		return nil, nil
	}

	for i, r := range raw {
		var compact bytes.Buffer
		if err := json.Compact(&compact, r); err == nil {
			raw[i] = compact.Bytes()
		}
	}
	return raw, nil
}

// preserveCorrupt copies unparsable content to a new file beside the store.
// Earlier backups are never overwritten.
func (s *JSONFileStore) preserveCorrupt(data []byte) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".corrupt.*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return name, err
	}
	return name, f.Close()
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

var _ Repository = (*JSONFileStore)(nil)
