package ticker

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS tickers (
	pos    INTEGER PRIMARY KEY,
	ticker TEXT NOT NULL,
	title  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS cache_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

// Cache keeps the last successfully loaded reference list in SQLite so the
// index survives a failed fetch.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database at dbPath, creating its
// parent directory if needed.
func OpenCache(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Save replaces the cached list with records, keeping their order.
func (c *Cache) Save(ctx context.Context, records []Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tickers`); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tickers (pos, ticker, title) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.Ticker, r.Title); err != nil {
			return fmt.Errorf("caching %s: %w", r.Ticker, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_meta (key, value) VALUES ('saved_at', ?)`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	return tx.Commit()
}

// Load returns the cached list in its saved order. An empty cache returns
// ErrEmptyList.
func (c *Cache) Load(ctx context.Context) ([]Record, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT ticker, title FROM tickers ORDER BY pos`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Ticker, &r.Title); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyList
	}
	return records, nil
}

// SavedAt returns when the cache was last written; zero if never.
func (c *Cache) SavedAt(ctx context.Context) (time.Time, error) {
	var v string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM cache_meta WHERE key = 'saved_at'`).Scan(&v)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}
