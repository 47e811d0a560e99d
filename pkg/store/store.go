package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const SELECT_HISTORY_WHERE = `SELECT
		id,
		format_id,
		format_title,
		mime,
		text,
		url,
		title,
		created_at
	FROM history WHERE 1=1
	`

type Manager struct {
	db *sql.DB
}

type HistoryEntry struct {
	ID          string    `json:"id" yaml:"id"`
	FormatID    string    `json:"formatId" yaml:"format_id"`
	FormatTitle string    `json:"formatTitle,omitempty" yaml:"format_title,omitempty"`
	MIME        string    `json:"mime" yaml:"mime"`
	Text        string    `json:"text" yaml:"text"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	CreatedAt   time.Time `json:"createdAt" yaml:"created_at"`
}

// HistoryFilter narrows SearchHistory. Zero fields match everything.
type HistoryFilter struct {
	FormatID string
	Contains string
	Since    time.Time
	Limit    int
}

func NewManager(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	m := &Manager{db: db}
	if err := m.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return m, nil
}

func (m *Manager) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS formats (
			id TEXT PRIMARY KEY,
			enabled INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id TEXT PRIMARY KEY,
			format_id TEXT NOT NULL,
			format_title TEXT,
			mime TEXT NOT NULL,
			text TEXT NOT NULL,
			url TEXT,
			title TEXT,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_created_at ON history(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_history_format_id ON history(format_id)`,
	}

	for _, query := range queries {
		if _, err := m.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}

func GetDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "formatlink", "formatlink.db")
}

// FormatStates returns the persisted enabled flag of every format that was
// toggled at least once.
func (m *Manager) FormatStates() (map[string]bool, error) {
	rows, err := m.db.Query(`SELECT id, enabled FROM formats`)
	if err != nil {
		return nil, fmt.Errorf("failed to query formats: %w", err)
	}
	defer rows.Close()

	states := make(map[string]bool)
	for rows.Next() {
		var id string
		var enabled bool
		if err := rows.Scan(&id, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan format: %w", err)
		}
		states[id] = enabled
	}
	return states, rows.Err()
}

func (m *Manager) SetFormatEnabled(id string, enabled bool) error {
	query := `
		INSERT OR REPLACE INTO formats (id, enabled, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := m.db.Exec(query, id, enabled); err != nil {
		return fmt.Errorf("failed to save format state: %w", err)
	}
	return nil
}

// Get returns the preference stored under key.
func (m *Manager) Get(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get preference: %w", err)
	}
	return value, true, nil
}

func (m *Manager) Set(key, value string) error {
	query := `
		INSERT OR REPLACE INTO preferences (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
	`
	if _, err := m.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set preference: %w", err)
	}
	return nil
}

// Delete removes the preference stored under key and reports whether it
// existed.
func (m *Manager) Delete(key string) (bool, error) {
	res, err := m.db.Exec(`DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete preference: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete preference: %w", err)
	}
	return n > 0, nil
}

// Preferences returns every stored preference.
func (m *Manager) Preferences() (map[string]string, error) {
	rows, err := m.db.Query(`SELECT key, value FROM preferences ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs[k] = v
	}
	return prefs, rows.Err()
}

// AddHistory stores e with a fresh id and, when unset, the current time.
func (m *Manager) AddHistory(e HistoryEntry) (HistoryEntry, error) {
	e.ID = uuid.New().String()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO history
		(id, format_id, format_title, mime, text, url, title, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := m.db.Exec(query, e.ID, e.FormatID, e.FormatTitle, e.MIME, e.Text, e.URL, e.Title, e.CreatedAt)
	if err != nil {
		return HistoryEntry{}, fmt.Errorf("failed to save history entry: %w", err)
	}
	return e, nil
}

// SearchHistory returns matching entries, newest first.
func (m *Manager) SearchHistory(f HistoryFilter) ([]HistoryEntry, error) {
	query := SELECT_HISTORY_WHERE
	args := []any{}

	if f.FormatID != "" {
		query += " AND format_id = ? COLLATE NOCASE"
		args = append(args, f.FormatID)
	}

	if f.Contains != "" {
		query += " AND (text LIKE ? OR url LIKE ? OR title LIKE ?)"
		like := "%" + strings.ReplaceAll(f.Contains, "%", "") + "%"
		args = append(args, like, like, like)
	}

	if !f.Since.IsZero() {
		query += " AND created_at >= ?"
		args = append(args, f.Since.UTC())
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		if err := e.Scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ClearHistory deletes every entry and returns how many were removed.
func (m *Manager) ClearHistory() (int64, error) {
	res, err := m.db.Exec(`DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear history: %w", err)
	}
	return res.RowsAffected()
}

func (m *Manager) GetStoreInfo() (map[string]any, error) {
	var historyCount, formatCount, prefCount int
	var oldest sql.NullString

	if err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&historyCount); err != nil {
		return nil, fmt.Errorf("failed to query history count: %w", err)
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM formats").Scan(&formatCount); err != nil {
		return nil, fmt.Errorf("failed to query format count: %w", err)
	}
	if err := m.db.QueryRow("SELECT COUNT(*) FROM preferences").Scan(&prefCount); err != nil {
		return nil, fmt.Errorf("failed to query preference count: %w", err)
	}
	if err := m.db.QueryRow("SELECT MIN(created_at) FROM history").Scan(&oldest); err != nil {
		return nil, fmt.Errorf("failed to query oldest history entry: %w", err)
	}

	return map[string]any{
		"history_count":    historyCount,
		"formats_toggled":  formatCount,
		"preference_count": prefCount,
		"oldest_history":   oldest.String,
	}, nil
}

func (e *HistoryEntry) Scan(rows *sql.Rows) error {
	var formatTitle, url, title sql.NullString
	err := rows.Scan(&e.ID,
		&e.FormatID,
		&formatTitle,
		&e.MIME,
		&e.Text,
		&url,
		&title,
		&e.CreatedAt)
	if err != nil {
		return err
	}
	e.FormatTitle = formatTitle.String
	e.URL = url.String
	e.Title = title.String
	return nil
}
