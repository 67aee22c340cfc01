package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ImportLog records the outcome of one workout history import.
type ImportLog struct {
	ID               int64     `json:"id"`
	CustomerID       uuid.UUID `json:"customer_id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	SessionsReceived int       `json:"sessions_received"`
	WorkoutsInserted int64     `json:"workouts_inserted"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// InsertImportLog creates a new import log entry and returns its ID.
func (db *DB) InsertImportLog(ctx context.Context, log ImportLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO import_logs (customer_id, source, status, sessions_received, workouts_inserted,
		 duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 RETURNING id`,
		log.CustomerID, log.Source, log.Status, log.SessionsReceived, log.WorkoutsInserted,
		log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting import log: %w", err)
	}
	return id, nil
}

// UpdateImportLog updates an existing entry, typically from "running" to "success" or "error".
func (db *DB) UpdateImportLog(ctx context.Context, id int64, log ImportLog) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE import_logs SET
		 status = $2, sessions_received = $3, workouts_inserted = $4,
		 duration_ms = $5, error_message = $6
		 WHERE id = $1`,
		id, log.Status, log.SessionsReceived, log.WorkoutsInserted,
		log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("updating import log %d: %w", id, err)
	}
	return nil
}

// QueryImportLogs returns the most recent import logs for a customer.
func (db *DB) QueryImportLogs(ctx context.Context, customerID uuid.UUID, limit int) ([]ImportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, customer_id, created_at, source, status, sessions_received, workouts_inserted,
		 duration_ms, error_message
		 FROM import_logs
		 WHERE customer_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying import logs: %w", err)
	}
	defer rows.Close()

	var result []ImportLog
	for rows.Next() {
		var l ImportLog
		if err := rows.Scan(&l.ID, &l.CustomerID, &l.CreatedAt, &l.Source, &l.Status,
			&l.SessionsReceived, &l.WorkoutsInserted, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning import log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
