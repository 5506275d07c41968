package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current index schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// ErrNoIndex means the template index has not been built yet.
var ErrNoIndex = errors.New("template index not found; run `lignore update` first")

// Index is the on-disk template index: template name to cached file path.
// Backed by SQLite in WAL mode so a half-finished refresh never corrupts it.
type Index struct {
	db  *sql.DB
	dir string
}

// Entry is one indexed template.
type Entry struct {
	Name      string
	Path      string
	FetchedAt time.Time
}

// OpenIndex creates or opens the index database inside cacheDir.
func OpenIndex(cacheDir string) (*Index, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("catalog: mkdir cache: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cacheDir, "index.db"))
	if err != nil {
		return nil, fmt.Errorf("catalog: open index: %w", err)
	}

	// WAL mode: allows concurrent readers while a refresh is writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: busy timeout: %w", err)
	}

	ix := &Index{db: db, dir: cacheDir}
	if err := ix.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) migrate() error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("catalog: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS templates (
			name       TEXT PRIMARY KEY,
			path       TEXT NOT NULL,
			fetched_at INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("catalog: create templates: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("catalog: set schema version: %w", err)
	}

	return tx.Commit()
}

// Close checkpoints WAL and closes the database.
func (ix *Index) Close() error {
	_, _ = ix.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return ix.db.Close()
}

// CacheDir returns the directory the index lives in.
func (ix *Index) CacheDir() string {
	return ix.dir
}

// ReplaceAll swaps the full index contents in one transaction.
func (ix *Index) ReplaceAll(entries []Entry) error {
	tx, err := ix.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM templates"); err != nil {
		return fmt.Errorf("catalog: clear templates: %w", err)
	}

	// Upsert: the template repository can carry the same basename in more
	// than one directory; the later entry wins.
	stmt, err := tx.Prepare(`
		INSERT INTO templates (name, path, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET path = excluded.path, fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("catalog: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		fetched := e.FetchedAt
		if fetched.IsZero() {
			fetched = time.Now()
		}
		if _, err := stmt.Exec(e.Name, e.Path, fetched.Unix()); err != nil {
			return fmt.Errorf("catalog: insert %s: %w", e.Name, err)
		}
	}

	return tx.Commit()
}

// Names returns every indexed template name in ascending order.
func (ix *Index) Names() ([]string, error) {
	rows, err := ix.db.Query("SELECT name FROM templates ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("catalog: list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("catalog: scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Path returns the cached file path for a template name.
func (ix *Index) Path(name string) (string, error) {
	var path string
	err := ix.db.QueryRow("SELECT path FROM templates WHERE name = ?", name).Scan(&path)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("catalog: template %q not indexed", name)
	}
	if err != nil {
		return "", fmt.Errorf("catalog: lookup %s: %w", name, err)
	}
	return path, nil
}

// Count returns the number of indexed templates.
func (ix *Index) Count() (int, error) {
	var n int
	if err := ix.db.QueryRow("SELECT COUNT(*) FROM templates").Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}
