// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteErrorKind groups SQLite failures by how a caller should react.
type SQLiteErrorKind int

const (
	// SQLiteOther is any error that is neither a conflict nor a constraint hit.
	SQLiteOther SQLiteErrorKind = iota
	// SQLiteConflict is SQLITE_BUSY or SQLITE_LOCKED. Retry.
	SQLiteConflict
	// SQLiteUnique is a UNIQUE or PRIMARY KEY violation. Never retry.
	SQLiteUnique
)

// ClassifySQLiteError inspects the driver result code when one is available
// and falls back to the message text for wrapped or foreign errors.
func ClassifySQLiteError(err error) SQLiteErrorKind {
	if err == nil {
		return SQLiteOther
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return SQLiteUnique
		}
		// Extended codes carry the primary code in the low byte.
		switch se.Code() & 0xff {
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return SQLiteConflict
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "SQLITE_CONSTRAINT_UNIQUE"):
		return SQLiteUnique
	case strings.Contains(msg, "SQLITE_BUSY"), strings.Contains(msg, "database is locked"):
		return SQLiteConflict
	}
	return SQLiteOther
}

// IsSQLiteConflictError reports whether err is a busy or locked database.
func IsSQLiteConflictError(err error) bool {
	return ClassifySQLiteError(err) == SQLiteConflict
}

// IsSQLiteUniqueError reports whether err is a uniqueness violation.
func IsSQLiteUniqueError(err error) bool {
	return ClassifySQLiteError(err) == SQLiteUnique
}
