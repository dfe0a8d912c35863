// Package catalog persists scan results in a SQLite database so repeated
// scans of a map directory can be browsed and diffed.
package catalog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"wld-viewer/internal/worldstat"
)

// Entry is one scanned world file.
type Entry struct {
	Path       string          `json:"path"`
	SHA256     string          `json:"sha256"`
	Stats      worldstat.Stats `json:"stats"`
	Warnings   int             `json:"warnings"`
	FatalError string          `json:"fatal_error,omitempty"`
	Thumbnail  string          `json:"thumbnail,omitempty"`
	ScannedAt  time.Time       `json:"scanned_at"`
}

// DB wraps the SQLite handle. Single connection: the scanner writes from
// worker goroutines and database/sql serializes them for us.
type DB struct {
	db *sql.DB
}

// Open creates the database file (and parent directory) if needed and
// applies the schema.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("catalog: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &DB{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS worlds (
			path TEXT PRIMARY KEY,
			sha256 TEXT NOT NULL,
			name TEXT NOT NULL,
			engine_build INTEGER NOT NULL,
			brushes INTEGER NOT NULL,
			sectors INTEGER NOT NULL,
			polygons INTEGER NOT NULL,
			vertices INTEGER NOT NULL,
			triangles INTEGER NOT NULL,
			warnings INTEGER NOT NULL,
			fatal_error TEXT NOT NULL DEFAULT '',
			thumbnail TEXT NOT NULL DEFAULT '',
			scanned_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_worlds_name ON worlds(name);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Put upserts one entry keyed by file path.
func (d *DB) Put(e Entry) error {
	_, err := d.db.Exec(`
		INSERT INTO worlds
			(path, sha256, name, engine_build, brushes, sectors, polygons,
			 vertices, triangles, warnings, fatal_error, thumbnail, scanned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			sha256=excluded.sha256, name=excluded.name,
			engine_build=excluded.engine_build, brushes=excluded.brushes,
			sectors=excluded.sectors, polygons=excluded.polygons,
			vertices=excluded.vertices, triangles=excluded.triangles,
			warnings=excluded.warnings, fatal_error=excluded.fatal_error,
			thumbnail=excluded.thumbnail, scanned_at=excluded.scanned_at`,
		e.Path, e.SHA256, e.Stats.Name, e.Stats.EngineBuild,
		e.Stats.Brushes, e.Stats.Sectors, e.Stats.Polygons,
		e.Stats.Vertices, e.Stats.Triangles, e.Warnings,
		e.FatalError, e.Thumbnail, e.ScannedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("catalog: put %s: %w", e.Path, err)
	}
	return nil
}

// List returns every entry ordered by path.
func (d *DB) List() ([]Entry, error) {
	rows, err := d.db.Query(`
		SELECT path, sha256, name, engine_build, brushes, sectors, polygons,
		       vertices, triangles, warnings, fatal_error, thumbnail, scanned_at
		FROM worlds ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var scannedAt string
		if err := rows.Scan(&e.Path, &e.SHA256, &e.Stats.Name, &e.Stats.EngineBuild,
			&e.Stats.Brushes, &e.Stats.Sectors, &e.Stats.Polygons,
			&e.Stats.Vertices, &e.Stats.Triangles, &e.Warnings,
			&e.FatalError, &e.Thumbnail, &scannedAt); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		e.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return out, nil
}

// Get fetches one entry by path; ok is false when absent.
func (d *DB) Get(path string) (Entry, bool, error) {
	var e Entry
	var scannedAt string
	err := d.db.QueryRow(`
		SELECT path, sha256, name, engine_build, brushes, sectors, polygons,
		       vertices, triangles, warnings, fatal_error, thumbnail, scanned_at
		FROM worlds WHERE path = ?`, path).
		Scan(&e.Path, &e.SHA256, &e.Stats.Name, &e.Stats.EngineBuild,
			&e.Stats.Brushes, &e.Stats.Sectors, &e.Stats.Polygons,
			&e.Stats.Vertices, &e.Stats.Triangles, &e.Warnings,
			&e.FatalError, &e.Thumbnail, &scannedAt)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("catalog: get %s: %w", path, err)
	}
	e.ScannedAt, _ = time.Parse(time.RFC3339, scannedAt)
	return e, true, nil
}
