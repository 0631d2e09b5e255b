package shared

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

func TestSQLiteErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want SQLiteErrorKind
	}{
		{"nil", nil, SQLiteOther},
		{"busy text", errors.New("database is locked (5) (SQLITE_BUSY)"), SQLiteConflict},
		{"locked text", fmt.Errorf("exec: %w", errors.New("database is locked")), SQLiteConflict},
		{"unique text", fmt.Errorf("insert: %w", errors.New("constraint failed: UNIQUE constraint failed: candidates.session_id (2067)")), SQLiteUnique},
		{"other", errors.New("no such table: candidates"), SQLiteOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySQLiteError(tt.err); got != tt.want {
				t.Errorf("ClassifySQLiteError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSQLiteDriverUniqueViolation(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE t (k TEXT UNIQUE)`); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO t (k) VALUES ('a')`); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err = db.Exec(`INSERT INTO t (k) VALUES ('a')`)
	if !IsSQLiteUniqueError(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
	if IsSQLiteConflictError(err) {
		t.Error("unique violation must not be retried")
	}
}
