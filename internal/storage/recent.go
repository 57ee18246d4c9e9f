// Package storage persists the list of recently opened sessions so the
// dashboard view survives restarts. The backend has no list-sessions
// endpoint, so the client remembers what it has seen.
package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS recent_sessions (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL DEFAULT '',
	last_opened INTEGER NOT NULL
);
`

// RecentSession is one entry in the dashboard's recent-sessions list.
type RecentSession struct {
	ID         string
	Title      string
	LastOpened time.Time
}

// RecentStore is a small SQLite-backed cache of session ids.
type RecentStore struct {
	db *sql.DB
}

// OpenRecentStore opens (and if needed creates) the cache in dataDir.
func OpenRecentStore(dataDir string) (*RecentStore, error) {
	db, err := sql.Open("sqlite", filepath.Join(dataDir, "sessions.db"))
	if err != nil {
		return nil, fmt.Errorf("open session cache: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create session cache schema: %w", err)
	}
	return &RecentStore{db: db}, nil
}

// Close closes the underlying database.
func (s *RecentStore) Close() error {
	return s.db.Close()
}

// Touch records that sessionID was opened now, inserting or refreshing its
// entry. A non-empty title replaces the stored one.
func (s *RecentStore) Touch(sessionID, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO recent_sessions (id, title, last_opened) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			last_opened = excluded.last_opened,
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE title END`,
		sessionID, title, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("touch session %s: %w", sessionID, err)
	}
	return nil
}

// List returns up to limit sessions, most recently opened first.
func (s *RecentStore) List(limit int) ([]RecentSession, error) {
	rows, err := s.db.Query(
		`SELECT id, title, last_opened FROM recent_sessions ORDER BY last_opened DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []RecentSession
	for rows.Next() {
		var rs RecentSession
		var ts int64
		if err := rows.Scan(&rs.ID, &rs.Title, &ts); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rs.LastOpened = time.UnixMilli(ts)
		sessions = append(sessions, rs)
	}
	return sessions, rows.Err()
}

// Remove deletes one entry. Removing an unknown id is a no-op.
func (s *RecentStore) Remove(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM recent_sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("remove session %s: %w", sessionID, err)
	}
	return nil
}
