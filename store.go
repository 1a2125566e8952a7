package blog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vedran/blog/content"
)

// dateLayout is fixed width so stored dates sort lexically.
const dateLayout = "2006-01-02T15:04:05.000000000Z07:00"

// entryColumns is the column list every entry query selects.
const entryColumns = `slug, title, date, body, description, featured_image, excerpt, draft, source_dir, assets`

// Store wraps a SQLite database holding the entries of the last content load.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the server read while a reload writes; writers wait on the
	// busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS entries (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    undated INTEGER NOT NULL,
    body TEXT NOT NULL,
    description TEXT NOT NULL,
    featured_image TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    draft INTEGER NOT NULL DEFAULT 0,
    source_dir TEXT NOT NULL,
    assets TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entries_order ON entries (undated, date DESC, slug);
`)
	return err
}

// ReplaceEntries swaps the stored entries for entries in one transaction, so
// readers see either the old set or the new one.
func (s *Store) ReplaceEntries(entries []content.Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO entries (slug, title, date, undated, body, description, featured_image, excerpt, draft, source_dir, assets) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		date, undated := "", 1
		if !e.Date.IsZero() {
			date, undated = e.Date.UTC().Format(dateLayout), 0
		}
		draft := 0
		if e.Draft {
			draft = 1
		}
		if _, err := stmt.Exec(e.Slug, e.Title, date, undated, e.Body, e.Description, e.FeaturedImage, e.Excerpt, draft, e.SourceDir, JoinAssets(e.Assets)); err != nil {
			return fmt.Errorf("insert %s: %w", e.Slug, err)
		}
	}
	return tx.Commit()
}

// ListEntries returns every entry, newest first.
func (s *Store) ListEntries() ([]content.Entry, error) {
	rows, err := s.db.Query(`SELECT ` + entryColumns + ` FROM entries ORDER BY undated ASC, date DESC, slug ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []content.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetEntry returns a single entry by slug.
func (s *Store) GetEntry(slug string) (content.Entry, error) {
	row := s.db.QueryRow(`SELECT `+entryColumns+` FROM entries WHERE slug = ?`, slug)
	return scanEntry(row)
}

// Navigation returns the entries on either side of slug in list order.
func (s *Store) Navigation(slug string) (content.Navigation, error) {
	var date string
	var undated int
	err := s.db.QueryRow(`SELECT date, undated FROM entries WHERE slug = ?`, slug).Scan(&date, &undated)
	if err != nil {
		return content.Navigation{}, err
	}

	var nav content.Navigation
	nav.Previous, err = s.neighbour(`
		SELECT slug, title FROM entries
		WHERE undated > ? OR (undated = ? AND date < ?) OR (undated = ? AND date = ? AND slug > ?)
		ORDER BY undated ASC, date DESC, slug ASC LIMIT 1`,
		undated, undated, date, undated, date, slug)
	if err != nil {
		return content.Navigation{}, err
	}
	nav.Next, err = s.neighbour(`
		SELECT slug, title FROM entries
		WHERE undated < ? OR (undated = ? AND date > ?) OR (undated = ? AND date = ? AND slug < ?)
		ORDER BY undated DESC, date ASC, slug DESC LIMIT 1`,
		undated, undated, date, undated, date, slug)
	if err != nil {
		return content.Navigation{}, err
	}
	return nav, nil
}

func (s *Store) neighbour(query string, args ...any) (*content.NavRef, error) {
	var ref content.NavRef
	err := s.db.QueryRow(query, args...).Scan(&ref.Slug, &ref.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (content.Entry, error) {
	var e content.Entry
	var date, assets string
	var draft int
	if err := row.Scan(&e.Slug, &e.Title, &date, &e.Body, &e.Description, &e.FeaturedImage, &e.Excerpt, &draft, &e.SourceDir, &assets); err != nil {
		return content.Entry{}, err
	}
	if date != "" {
		t, err := time.Parse(dateLayout, date)
		if err != nil {
			return content.Entry{}, fmt.Errorf("entry %s: %w", e.Slug, err)
		}
		e.Date = t
		e.DisplayDate = t.Format(content.DisplayDateLayout)
	}
	e.Draft = draft == 1
	e.Assets = SplitAssets(assets)
	return e, nil
}

// JoinAssets encodes asset paths for storage, one per line.
func JoinAssets(assets []string) string {
	return strings.Join(assets, "\n")
}

// SplitAssets is the inverse of JoinAssets.
func SplitAssets(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
