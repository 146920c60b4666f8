package pagecache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLite is a persistent page cache. It survives restarts, which matters
// for the search-based providers whose queries are the expensive part of a
// fetch.
type SQLite struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLite opens (creating if needed) a SQLite-backed page cache at
// dbPath with the given TTL.
func NewSQLite(dbPath string, ttl time.Duration) (*SQLite, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create page cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open page cache database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS pages (
			url        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			expires_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pages_expires_at ON pages(expires_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create page cache table: %w", err)
	}
	return &SQLite{db: db, ttl: ttl}, nil
}

// Get retrieves a response body by URL. Expired rows are deleted on read.
func (c *SQLite) Get(url string) ([]byte, bool) {
	var body []byte
	var expiresAt int64

	err := c.db.QueryRow(
		"SELECT body, expires_at FROM pages WHERE url = ?",
		url,
	).Scan(&body, &expiresAt)
	if err != nil {
		return nil, false
	}

	if time.Now().Unix() > expiresAt {
		c.db.Exec("DELETE FROM pages WHERE url = ?", url)
		return nil, false
	}
	return body, true
}

// Set stores a response body under its URL.
func (c *SQLite) Set(url string, body []byte) error {
	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO pages (url, body, expires_at) VALUES (?, ?, ?)",
		url, body, time.Now().Add(c.ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store page: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (c *SQLite) Clear() error {
	if _, err := c.db.Exec("DELETE FROM pages"); err != nil {
		return fmt.Errorf("failed to clear page cache: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *SQLite) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
