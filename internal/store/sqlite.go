package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
	"github.com/ashureev/talentscout/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite. Each submission is a
// single INSERT, so concurrent sessions never overwrite each other.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS candidates (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		record_json TEXT NOT NULL,
		submitted_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_candidates_submitted ON candidates(submitted_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Name implements Sink.
func (s *SQLiteStore) Name() string { return "sqlite" }

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Append stores one candidate record.
// Retries with exponential backoff while the database is busy.
func (s *SQLiteStore) Append(ctx context.Context, sub Submission) error {
	payload, err := json.Marshal(sub.Record)
	if err != nil {
		return fmt.Errorf("encode candidate: %w", err)
	}
	name, _ := sub.Record.Get(domain.KeyName)
	email, _ := sub.Record.Get(domain.KeyEmail)

	query := `
	INSERT INTO candidates (session_id, name, email, record_json, submitted_at)
	VALUES (?, ?, ?, ?, ?)`

	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query,
			sub.SessionID, name, email, string(payload), sub.Record.Timestamp.Unix(),
		)
		if err == nil {
			return nil
		}
		if shared.IsSQLiteUniqueError(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateSubmission, sub.SessionID)
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i) // 50ms, 100ms
			slog.Debug("Candidate insert hit SQLITE_BUSY, retrying",
				"session_id", sub.SessionID,
				"attempt", i+1,
				"delay", delay)
			select {
			case <-time.After(delay):
				continue
			case <-ctx.Done():
				return fmt.Errorf("insert candidate: %w", ctx.Err())
			}
		}
		break
	}
	return fmt.Errorf("insert candidate for %s: %w", sub.SessionID, err)
}

// List returns every stored record in submission order.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.CandidateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT session_id, record_json FROM candidates ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close candidate rows", "error", closeErr)
		}
	}()

	var records []domain.CandidateRecord
	for rows.Next() {
		var sessionID, payload string
		if err := rows.Scan(&sessionID, &payload); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}
		var rec domain.CandidateRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decode candidate %s: %w", sessionID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return records, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
