// Package chatstate keeps the chat client's per-conversation state on
// disk: how far the user has read and which display language they chose.
package chatstate

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store is the SQLite state database of one chat client.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the state database at dir/chat.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "chat.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS conversations (
		customer_id TEXT PRIMARY KEY,
		read_until  INTEGER NOT NULL DEFAULT 0,
		language    TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &Store{db: db}, nil
}

// ReadUntil returns the read cursor of a conversation, zero if it was never opened.
func (s *Store) ReadUntil(customerID uuid.UUID) (time.Time, error) {
	var nanos int64
	err := s.db.QueryRow(
		`SELECT read_until FROM conversations WHERE customer_id = ?`, customerID.String(),
	).Scan(&nanos)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && nanos == 0) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading cursor: %w", err)
	}
	return time.Unix(0, nanos).UTC(), nil
}

// MarkRead moves the cursor to t. The cursor never moves backwards.
func (s *Store) MarkRead(customerID uuid.UUID, t time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (customer_id, read_until) VALUES (?, ?)
		 ON CONFLICT (customer_id) DO UPDATE SET read_until = MAX(read_until, excluded.read_until)`,
		customerID.String(), t.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("marking read: %w", err)
	}
	return nil
}

// Language returns the display language chosen for a conversation, "" if none.
func (s *Store) Language(customerID uuid.UUID) (string, error) {
	var lang string
	err := s.db.QueryRow(
		`SELECT language FROM conversations WHERE customer_id = ?`, customerID.String(),
	).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading language: %w", err)
	}
	return lang, nil
}

// SetLanguage records the display language of a conversation.
func (s *Store) SetLanguage(customerID uuid.UUID, lang string) error {
	_, err := s.db.Exec(
		`INSERT INTO conversations (customer_id, language) VALUES (?, ?)
		 ON CONFLICT (customer_id) DO UPDATE SET language = excluded.language`,
		customerID.String(), lang,
	)
	if err != nil {
		return fmt.Errorf("saving language: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Unread counts messages and replies written by the other side after since.
func Unread(msgs []models.Message, self string, since time.Time) int {
	n := 0
	for _, m := range msgs {
		if m.Sender != self && m.CreatedAt.After(since) {
			n++
		}
		for _, r := range m.Replies {
			if r.Sender != self && r.CreatedAt.After(since) {
				n++
			}
		}
	}
	return n
}

// Latest returns the newest timestamp in a conversation.
func Latest(msgs []models.Message) time.Time {
	var t time.Time
	for _, m := range msgs {
		if m.CreatedAt.After(t) {
			t = m.CreatedAt
		}
		for _, r := range m.Replies {
			if r.CreatedAt.After(t) {
				t = r.CreatedAt
			}
		}
	}
	return t
}
