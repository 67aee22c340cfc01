package importer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// State remembers which export files were imported for which customer, so
// re-running over a folder of exports only sends new ones.
type State struct {
	db *sql.DB
}

// OpenState opens (or creates) the SQLite state database at dir/imports.db.
func OpenState(dir string) (*State, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "imports.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		customer_id       TEXT NOT NULL,
		hash              TEXT NOT NULL,
		name              TEXT NOT NULL,
		workouts_inserted INTEGER NOT NULL,
		imported_at       TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (customer_id, hash)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &State{db: db}, nil
}

// Imported reports whether a file with this content was already imported
// for the customer. Renamed or moved copies count as imported.
func (s *State) Imported(customerID uuid.UUID, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE customer_id = ? AND hash = ?`,
		customerID.String(), hash,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking import state: %w", err)
	}
	return count > 0, nil
}

// MarkImported records a successful import.
func (s *State) MarkImported(customerID uuid.UUID, hash, name string, inserted int64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (customer_id, hash, name, workouts_inserted) VALUES (?, ?, ?, ?)`,
		customerID.String(), hash, name, inserted,
	)
	if err != nil {
		return fmt.Errorf("recording import: %w", err)
	}
	return nil
}

// Close closes the state database.
func (s *State) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
