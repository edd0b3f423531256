// Package storage provides a SQLite-backed visited set for the crawler.
// The default database lives in memory and disappears with the process.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	// SQLite database driver (CGO-free)
	_ "modernc.org/sqlite"
)

// MemoryDSN opens a private in-memory database
const MemoryDSN = ":memory:"

// SQLiteVisitedSet records visited page keys in a SQLite table
type SQLiteVisitedSet struct {
	db *sql.DB
}

// NewSQLiteVisitedSet opens dsn and prepares the schema
func NewSQLiteVisitedSet(dsn string) (*SQLiteVisitedSet, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serializes writers and keeps an in-memory
	// database alive; it must never be recycled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &SQLiteVisitedSet{db: db}
	if err := s.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// InitSchema applies pragmas and creates the visited table
func (s *SQLiteVisitedSet) InitSchema() error {
	pragmas := []string{
		"PRAGMA synchronous = OFF",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// MarkVisited inserts key and reports whether the row was new.
// INSERT OR IGNORE makes the check and the insert one statement.
func (s *SQLiteVisitedSet) MarkVisited(key string) (bool, error) {
	res, err := s.db.Exec(
		"INSERT OR IGNORE INTO visited (page_key, visited_at) VALUES (?, ?)",
		key, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark %s visited: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

// Len returns the number of visited keys
func (s *SQLiteVisitedSet) Len() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM visited").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count visited pages: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteVisitedSet) Close() error {
	return s.db.Close()
}
