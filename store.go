package inkpress

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// IndexEntry records one built page so later builds can skip unchanged
// sources.
type IndexEntry struct {
	Source    string // content-relative source path
	Permalink string
	Hash      string // sha256 of everything that feeds the rendered page
	BuiltAt   string // RFC3339
}

// Index wraps a SQLite database that tracks what the last build produced.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (or creates) the build index at path, ensures the data
// directory exists, and runs schema migrations.
func OpenIndex(path string) (*Index, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL so a serve-triggered rebuild can read while a previous write
	// finishes; busy_timeout so writers wait instead of failing with
	// SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	idx := &Index{db: db}
	if err := idx.ensureSchema(); err != nil {
		return nil, err
	}
	return idx, nil
}

// Close closes the underlying database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

func (idx *Index) ensureSchema() error {
	_, err := idx.db.Exec(`
CREATE TABLE IF NOT EXISTS pages (
    source TEXT PRIMARY KEY,
    permalink TEXT NOT NULL,
    hash TEXT NOT NULL,
    built_at TEXT NOT NULL
);
`)
	return err
}

// Get returns the index entry for a source path, or ok=false if the page
// has never been built.
func (idx *Index) Get(source string) (IndexEntry, bool, error) {
	var e IndexEntry
	err := idx.db.QueryRow(`SELECT source, permalink, hash, built_at FROM pages WHERE source = ?`, source).
		Scan(&e.Source, &e.Permalink, &e.Hash, &e.BuiltAt)
	if err == sql.ErrNoRows {
		return IndexEntry{}, false, nil
	}
	if err != nil {
		return IndexEntry{}, false, err
	}
	return e, true, nil
}

// Put upserts an index entry, stamping BuiltAt if the caller left it empty.
func (idx *Index) Put(e IndexEntry) error {
	if e.BuiltAt == "" {
		e.BuiltAt = time.Now().UTC().Format(time.RFC3339)
	}
	_, err := idx.db.Exec(`INSERT OR REPLACE INTO pages (source, permalink, hash, built_at) VALUES (?, ?, ?, ?)`,
		e.Source, e.Permalink, e.Hash, e.BuiltAt)
	return err
}

// List returns every entry ordered by source path.
func (idx *Index) List() ([]IndexEntry, error) {
	rows, err := idx.db.Query(`SELECT source, permalink, hash, built_at FROM pages ORDER BY source`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []IndexEntry
	for rows.Next() {
		var e IndexEntry
		if err := rows.Scan(&e.Source, &e.Permalink, &e.Hash, &e.BuiltAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries whose source is no longer in the live set and
// returns the removed entries so the builder can delete their output.
func (idx *Index) Prune(live map[string]struct{}) ([]IndexEntry, error) {
	entries, err := idx.List()
	if err != nil {
		return nil, err
	}
	var removed []IndexEntry
	for _, e := range entries {
		if _, ok := live[e.Source]; ok {
			continue
		}
		if _, err := idx.db.Exec(`DELETE FROM pages WHERE source = ?`, e.Source); err != nil {
			return nil, err
		}
		removed = append(removed, e)
	}
	return removed, nil
}
