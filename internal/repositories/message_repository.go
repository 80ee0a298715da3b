package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"findsync/internal/models"
)

// MessageRepository defines interactions for contact messages.
type MessageRepository interface {
	CreateMessage(ctx context.Context, contactID, senderID, receiverID int, body string) (models.Message, error)
	ListMessages(ctx context.Context, contactID int) ([]models.Message, error)
	MarkRead(ctx context.Context, contactID, receiverID int) (int64, error)
	CountUnread(ctx context.Context, userID int) (int, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage stores a reply in a contact conversation.
func (r *MessageRepo) CreateMessage(ctx context.Context, contactID, senderID, receiverID int, body string) (models.Message, error) {
	var msg models.Message
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (contact_id, sender_id, receiver_id, body) VALUES ($1, $2, $3, $4)
        RETURNING id, contact_id, sender_id, receiver_id, body, sent_at, read_at`, contactID, senderID, receiverID, body).
		Scan(&msg.ID, &msg.ContactID, &msg.SenderID, &msg.ReceiverID, &msg.Body, &msg.SentAt, &msg.ReadAt)
	return msg, err
}

// ListMessages returns the conversation oldest first.
func (r *MessageRepo) ListMessages(ctx context.Context, contactID int) ([]models.Message, error) {
	msgs := []models.Message{}
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, contact_id, sender_id, receiver_id, body, sent_at, read_at
        FROM messages WHERE contact_id=$1 ORDER BY sent_at ASC, id ASC`, contactID)
	return msgs, err
}

// MarkRead stamps read_at on unread messages addressed to receiverID.
func (r *MessageRepo) MarkRead(ctx context.Context, contactID, receiverID int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET read_at = NOW()
        WHERE contact_id=$1 AND receiver_id=$2 AND read_at IS NULL`, contactID, receiverID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread counts messages addressed to userID that were never viewed.
func (r *MessageRepo) CountUnread(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages WHERE receiver_id=$1 AND read_at IS NULL`, userID)
	return count, err
}
