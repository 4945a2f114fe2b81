// Package history persists recent conversions and user settings in a local
// SQLite database.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultMaxPerTab is how many entries each tab keeps before the oldest are
// trimmed.
const DefaultMaxPerTab = 50

// SettingsDefaults seeds the settings table on first open. Keys not listed
// here are rejected on write.
var SettingsDefaults = map[string]string{
	"gemini_api_key": "",
	"gemini_model":   "gemini-2.5-flash",
}

// Entry is one saved conversion. Data carries the tab-specific payload as
// raw JSON; the store never interprets it.
type Entry struct {
	ID        int64           `json:"id"`
	Tab       string          `json:"tab"`
	CreatedAt string          `json:"created_at"`
	Title     string          `json:"title"`
	Thumbnail string          `json:"thumbnail,omitempty"`
	Image     string          `json:"image,omitempty"`
	Data      json.RawMessage `json:"data"`
}

// Store wraps the database handle. Safe for concurrent use.
type Store struct {
	db        *sql.DB
	maxPerTab int
}

// Open creates or opens the database at path and runs migrations.
func Open(path string, maxPerTab int) (*Store, error) {
	if maxPerTab <= 0 {
		maxPerTab = DefaultMaxPerTab
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	s := &Store{db: db, maxPerTab: maxPerTab}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			tab         TEXT    NOT NULL,
			created_at  TEXT    NOT NULL,
			title       TEXT    NOT NULL,
			thumbnail   TEXT,
			image       TEXT,
			data        TEXT    NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tab_time ON history(tab, id DESC)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate history db: %w", err)
		}
	}
	// Older databases predate the image column; the ALTER fails once the
	// column exists, which is fine.
	_, _ = s.db.Exec(`ALTER TABLE history ADD COLUMN image TEXT`)
	for key, val := range SettingsDefaults {
		if _, err := s.db.Exec(`INSERT OR IGNORE INTO settings (key, value) VALUES (?, ?)`, key, val); err != nil {
			return fmt.Errorf("seed settings: %w", err)
		}
	}
	return nil
}

// Add saves an entry and trims the tab to its retention limit.
func (s *Store) Add(tab, title, thumbnail, image string, data json.RawMessage) (int64, error) {
	if data == nil {
		data = json.RawMessage("{}")
	}
	createdAt := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.Exec(
		`INSERT INTO history (tab, created_at, title, thumbnail, image, data) VALUES (?, ?, ?, ?, ?, ?)`,
		tab, createdAt, title, thumbnail, image, string(data),
	)
	if err != nil {
		return 0, fmt.Errorf("add history entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = s.db.Exec(
		`DELETE FROM history WHERE tab = ? AND id NOT IN (
			SELECT id FROM history WHERE tab = ? ORDER BY id DESC LIMIT ?
		)`,
		tab, tab, s.maxPerTab,
	)
	if err != nil {
		return 0, fmt.Errorf("trim history: %w", err)
	}
	return id, nil
}

// Entries returns the newest entries for a tab, newest first.
func (s *Store) Entries(tab string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.maxPerTab {
		limit = s.maxPerTab
	}
	rows, err := s.db.Query(
		`SELECT id, tab, created_at, title, COALESCE(thumbnail, ''), COALESCE(image, ''), data
		 FROM history WHERE tab = ? ORDER BY id DESC LIMIT ?`,
		tab, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		var data string
		if err := rows.Scan(&e.ID, &e.Tab, &e.CreatedAt, &e.Title, &e.Thumbnail, &e.Image, &data); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Data = json.RawMessage(data)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteEntry removes one entry; it reports whether anything was deleted.
func (s *Store) DeleteEntry(id int64) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ClearTab removes every entry for a tab and returns the count removed.
func (s *Store) ClearTab(tab string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM history WHERE tab = ?`, tab)
	if err != nil {
		return 0, fmt.Errorf("clear history tab: %w", err)
	}
	return res.RowsAffected()
}

// Settings returns every setting, with defaults filled in for missing keys.
func (s *Store) Settings() (map[string]string, error) {
	out := make(map[string]string, len(SettingsDefaults))
	for k, v := range SettingsDefaults {
		out[k] = v
	}
	rows, err := s.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Setting returns one value, or the default when unset.
func (s *Store) Setting(key string) (string, error) {
	all, err := s.Settings()
	if err != nil {
		return "", err
	}
	return all[key], nil
}

// SetSettings updates the given keys. Unknown keys are silently skipped so a
// stale client cannot grow the table.
func (s *Store) SetSettings(updates map[string]string) error {
	for key, val := range updates {
		if _, ok := SettingsDefaults[key]; !ok {
			continue
		}
		if _, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, val); err != nil {
			return fmt.Errorf("set setting %q: %w", key, err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
