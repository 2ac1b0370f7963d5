// Package manifest persists an index of fetched media inside the cache
// directory. The index is purely re-derivable: deleting it (or the cache)
// only costs a re-download. It lets repeated runs skip the network entirely
// when a matching artifact is already on disk.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages the cache manifest backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Record describes one fetched artifact.
type Record struct {
	URL          string
	Height       int
	VideoID      string
	Title        string
	Duration     float64
	ThumbnailURL string
	Path         string
	FetchedAt    time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS fetched_media (
    url           TEXT NOT NULL,
    height        INTEGER NOT NULL,
    video_id      TEXT NOT NULL,
    title         TEXT NOT NULL DEFAULT '',
    duration      REAL NOT NULL DEFAULT 0,
    thumbnail_url TEXT NOT NULL DEFAULT '',
    path          TEXT NOT NULL,
    fetched_at    TEXT NOT NULL,
    PRIMARY KEY (url, height)
);
`

// Open initializes or connects to the manifest database under cacheDir.
func Open(cacheDir string) (*Store, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "manifest.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open manifest db: %w", err)
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

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply manifest schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the manifest database.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Put upserts a record after a successful fetch.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if s == nil || s.db == nil {
		return nil
	}
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fetched_media
            (url, height, video_id, title, duration, thumbnail_url, path, fetched_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(url, height) DO UPDATE SET
            video_id = excluded.video_id,
            title = excluded.title,
            duration = excluded.duration,
            thumbnail_url = excluded.thumbnail_url,
            path = excluded.path,
            fetched_at = excluded.fetched_at`,
		rec.URL, rec.Height, rec.VideoID, rec.Title, rec.Duration,
		rec.ThumbnailURL, rec.Path, rec.FetchedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("put manifest record: %w", err)
	}
	return nil
}

// Lookup returns the record for a URL at the given target height. The second
// return value is false when no usable record exists: either no row, or the
// recorded file has vanished from disk (the stale row is removed).
func (s *Store) Lookup(ctx context.Context, url string, height int) (Record, bool, error) {
	if s == nil || s.db == nil {
		return Record{}, false, nil
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT url, height, video_id, title, duration, thumbnail_url, path, fetched_at
         FROM fetched_media WHERE url = ? AND height = ?`, url, height)

	var rec Record
	var fetchedAt string
	err := row.Scan(&rec.URL, &rec.Height, &rec.VideoID, &rec.Title,
		&rec.Duration, &rec.ThumbnailURL, &rec.Path, &fetchedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, fmt.Errorf("lookup manifest record: %w", err)
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, fetchedAt); parseErr == nil {
		rec.FetchedAt = parsed
	}

	if _, statErr := os.Stat(rec.Path); statErr != nil {
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM fetched_media WHERE url = ? AND height = ?`, url, height)
		return Record{}, false, nil
	}
	return rec, true, nil
}

// Prune removes rows whose files no longer exist and reports how many were
// dropped.
func (s *Store) Prune(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT url, height, path FROM fetched_media`)
	if err != nil {
		return 0, fmt.Errorf("scan manifest: %w", err)
	}
	defer rows.Close()

	type key struct {
		url    string
		height int
	}
	var stale []key
	for rows.Next() {
		var k key
		var path string
		if err := rows.Scan(&k.url, &k.height, &path); err != nil {
			return 0, fmt.Errorf("scan manifest row: %w", err)
		}
		if _, statErr := os.Stat(path); statErr != nil {
			stale = append(stale, k)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate manifest: %w", err)
	}

	for _, k := range stale {
		if _, err := s.db.ExecContext(ctx,
			`DELETE FROM fetched_media WHERE url = ? AND height = ?`, k.url, k.height); err != nil {
			return 0, fmt.Errorf("prune manifest record: %w", err)
		}
	}
	return len(stale), nil
}
