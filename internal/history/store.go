// Package history persists executed scene switches so the host can see
// what the show actually did: which products were shown, for whom, and
// when. Recording is best-effort; a write failure never blocks a switch.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one executed switch to a product scene.
type Entry struct {
	ID         int64
	Product    string
	Scene      string
	Author     string
	Comment    string
	Confidence float64
	Method     string
	SwitchedAt time.Time
}

// ProductCount aggregates switches per product.
type ProductCount struct {
	Product      string
	Switches     int64
	LastSwitched time.Time
}

// Store manages switch history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies
// migrations.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one executed switch.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	switchedAt := entry.SwitchedAt
	if switchedAt.IsZero() {
		switchedAt = time.Now()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO switches (product, scene, author, comment, confidence, method, switched_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.Product,
		entry.Scene,
		entry.Author,
		entry.Comment,
		entry.Confidence,
		entry.Method,
		switchedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert switch: %w", err)
	}
	return nil
}

// Recent returns the most recent switches, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, product, scene, author, comment, confidence, method, switched_at
         FROM switches ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query switches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var switchedAt string
		if err := rows.Scan(
			&entry.ID,
			&entry.Product,
			&entry.Scene,
			&entry.Author,
			&entry.Comment,
			&entry.Confidence,
			&entry.Method,
			&switchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan switch: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, switchedAt); parseErr == nil {
			entry.SwitchedAt = parsed
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate switches: %w", err)
	}
	return entries, nil
}

// Summary aggregates switch counts per product, most shown first.
func (s *Store) Summary(ctx context.Context) ([]ProductCount, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT product, COUNT(1), MAX(switched_at)
         FROM switches GROUP BY product ORDER BY COUNT(1) DESC, product ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary: %w", err)
	}
	defer rows.Close()

	var counts []ProductCount
	for rows.Next() {
		var count ProductCount
		var last string
		if err := rows.Scan(&count.Product, &count.Switches, &last); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if parsed, parseErr := time.Parse(time.RFC3339Nano, last); parseErr == nil {
			count.LastSwitched = parsed
		}
		counts = append(counts, count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary: %w", err)
	}
	return counts, nil
}
