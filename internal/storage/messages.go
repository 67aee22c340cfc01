package storage

import (
	"context"
	"fmt"

	"github.com/claude/coachdesk/internal/models"
	"github.com/google/uuid"
)

// ListMessages returns a customer's conversation, newest message first, each
// with its replies in chronological order.
func (db *DB) ListMessages(ctx context.Context, customerID uuid.UUID) ([]models.Message, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, customer_id, sender, body, created_at
		 FROM messages
		 WHERE customer_id = $1
		 ORDER BY created_at DESC`,
		customerID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var (
		result []models.Message
		ids    []uuid.UUID
	)
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.CustomerID, &m.Sender, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.Replies = []models.Reply{}
		index[m.ID] = len(result)
		ids = append(ids, m.ID)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return result, nil
	}

	replyRows, err := db.Pool.Query(ctx,
		`SELECT id, message_id, sender, body, created_at
		 FROM message_replies
		 WHERE message_id = ANY($1)
		 ORDER BY created_at ASC`,
		ids)
	if err != nil {
		return nil, fmt.Errorf("querying replies: %w", err)
	}
	defer replyRows.Close()

	for replyRows.Next() {
		var r models.Reply
		if err := replyRows.Scan(&r.ID, &r.MessageID, &r.Sender, &r.Body, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reply: %w", err)
		}
		i := index[r.MessageID]
		result[i].Replies = append(result[i].Replies, r)
	}
	return result, replyRows.Err()
}

// CreateMessage posts a new message to a customer's conversation.
func (db *DB) CreateMessage(ctx context.Context, customerID uuid.UUID, sender, body string) (*models.Message, error) {
	m := models.Message{ID: uuid.New(), Replies: []models.Reply{}}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO messages (id, customer_id, sender, body)
		 VALUES ($1,$2,$3,$4)
		 RETURNING id, customer_id, sender, body, created_at`,
		m.ID, customerID, sender, body,
	).Scan(&m.ID, &m.CustomerID, &m.Sender, &m.Body, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}
	return &m, nil
}

// CreateReply answers an existing message. ErrNotFound is returned when the
// message does not exist.
func (db *DB) CreateReply(ctx context.Context, messageID uuid.UUID, sender, body string) (*models.Reply, error) {
	r := models.Reply{ID: uuid.New()}
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO message_replies (id, message_id, sender, body)
		 SELECT $1, id, $3, $4 FROM messages WHERE id = $2
		 RETURNING id, message_id, sender, body, created_at`,
		r.ID, messageID, sender, body,
	).Scan(&r.ID, &r.MessageID, &r.Sender, &r.Body, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting reply to %s: %w", messageID, notFound(err))
	}
	return &r, nil
}
