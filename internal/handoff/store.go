// Package handoff provides a SQLite-backed single-slot handoff store.
// A slot is written once and consumed once: taking a value clears it.
// The only slot the core uses today carries a just-created feed item
// from the post-creation flow to the presentation layer.
package handoff

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arnfell/driftline/internal/apperr"
)

// SlotLatestPost carries the most recently created feed item.
const SlotLatestPost = "latest_post"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS handoff (
	slot       TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps a sql.DB with slot operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("handoff: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handoff: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handoff: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Put stores a payload in the slot, replacing any unread value.
func (s *Store) Put(slot string, payload []byte) error {
	_, err := s.conn.Exec(
		`INSERT INTO handoff (slot, payload, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		slot, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("handoff: put %s: %w", slot, err)
	}
	return nil
}

// Take returns the slot's payload and clears it. Returns
// apperr.ErrNoHandoff when the slot is empty.
func (s *Store) Take(slot string) ([]byte, error) {
	tx, err := s.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("handoff: begin: %w", err)
	}
	defer tx.Rollback()

	var payload []byte
	err = tx.QueryRow(`SELECT payload FROM handoff WHERE slot = ?`, slot).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNoHandoff
	}
	if err != nil {
		return nil, fmt.Errorf("handoff: take %s: %w", slot, err)
	}
	if _, err := tx.Exec(`DELETE FROM handoff WHERE slot = ?`, slot); err != nil {
		return nil, fmt.Errorf("handoff: clear %s: %w", slot, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("handoff: commit: %w", err)
	}
	return payload, nil
}
