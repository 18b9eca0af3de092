package langinfo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"grf2txt/internal/grffmt"
	"grf2txt/internal/log"
	"grf2txt/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// ErrCacheEmpty is returned by Cache.Load before the first Store.
var ErrCacheEmpty = errors.New("langinfo: cache empty")

// Cache persists the language list between runs.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache opens or creates the SQLite cache at path.
func OpenCache(ctx context.Context, path string) (*Cache, error) {
	l := log.WithOperation(log.WithComponent("langinfo"), "cache_open").With(slog.String("path", path))
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("langinfo: cache path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("langinfo: create cache dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("langinfo: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("langinfo: enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	l.Debug("cache ready")
	return &Cache{db: db, path: path}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS languages (
			grflangid INTEGER PRIMARY KEY,
			isocode   TEXT NOT NULL,
			filename  TEXT NOT NULL,
			name      TEXT NOT NULL,
			ownname   TEXT NOT NULL,
			plural    INTEGER NOT NULL,
			gender    TEXT NOT NULL,
			cases     TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("langinfo: create table: %w", err)
		}
	}
	var cur int
	err := db.QueryRowContext(ctx, `SELECT CAST(value AS INTEGER) FROM meta WHERE key='schema'`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES ('schema', ?)`, fmt.Sprint(schemaVersion))
		if err != nil {
			return fmt.Errorf("langinfo: seed schema: %w", err)
		}
	case err != nil:
		return fmt.Errorf("langinfo: read schema: %w", err)
	case cur != schemaVersion:
		// Only a cache; start over rather than migrate.
		if _, err := db.ExecContext(ctx, `DELETE FROM languages`); err != nil {
			return fmt.Errorf("langinfo: reset cache: %w", err)
		}
		if _, err := db.ExecContext(ctx, `UPDATE meta SET value=? WHERE key='schema'`, fmt.Sprint(schemaVersion)); err != nil {
			return fmt.Errorf("langinfo: update schema: %w", err)
		}
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string { return c.path }

// Close closes the database.
func (c *Cache) Close() error { return c.db.Close() }

// Load returns the cached list and when it was fetched.
func (c *Cache) Load(ctx context.Context) ([]LangInfo, time.Time, error) {
	var stamp string
	err := c.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key='fetched_at'`).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrCacheEmpty
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("langinfo: read fetched_at: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("langinfo: parse fetched_at: %w", err)
	}

	rows, err := c.db.QueryContext(ctx, `SELECT grflangid, isocode, filename, name, ownname, plural, gender, cases FROM languages ORDER BY grflangid`)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("langinfo: query languages: %w", err)
	}
	defer rows.Close()
	var out []LangInfo
	for rows.Next() {
		var li LangInfo
		var id int
		var gender, cases string
		if err := rows.Scan(&id, &li.ISOCode, &li.Filename, &li.Name, &li.OwnName, &li.Plural, &gender, &cases); err != nil {
			return nil, time.Time{}, fmt.Errorf("langinfo: scan language: %w", err)
		}
		li.GRFLangID = grffmt.LangID(id)
		li.Gender = strings.Fields(gender)
		li.Case = strings.Fields(cases)
		out = append(out, li)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Time{}, fmt.Errorf("langinfo: iterate languages: %w", err)
	}
	if len(out) == 0 {
		return nil, time.Time{}, ErrCacheEmpty
	}
	return out, at, nil
}

// Store replaces the cached list.
func (c *Cache) Store(ctx context.Context, list []LangInfo, at time.Time) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("langinfo: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM languages`); err != nil {
		return fmt.Errorf("langinfo: clear: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO languages
		(grflangid, isocode, filename, name, ownname, plural, gender, cases)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("langinfo: prepare: %w", err)
	}
	defer stmt.Close()
	for _, li := range list {
		if _, err := stmt.ExecContext(ctx, int(li.GRFLangID), li.ISOCode, li.Filename, li.Name, li.OwnName,
			li.Plural, strings.Join(li.Gender, " "), strings.Join(li.Case, " ")); err != nil {
			return fmt.Errorf("langinfo: insert %s: %w", li.ISOCode, err)
		}
	}
	for k, v := range map[string]string{
		"fetched_at": at.UTC().Format(time.RFC3339Nano),
		"app":        version.String(),
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value=excluded.value`, k, v); err != nil {
			return fmt.Errorf("langinfo: write %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("langinfo: commit: %w", err)
	}
	return nil
}
