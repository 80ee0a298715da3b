package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"findsync/internal/models"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository abstracts contact persistence.
type ContactRepository interface {
	CreateContact(ctx context.Context, senderID, receiverID, itemID int, message string) (models.Contact, error)
	GetContact(ctx context.Context, contactID int) (models.Contact, error)
	ListContactsForUser(ctx context.Context, userID int) ([]models.ContactSummary, error)
}

// ContactRepo is a sqlx implementation of ContactRepository.
type ContactRepo struct {
	db *sqlx.DB
}

// NewContactRepo constructs a ContactRepo.
func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// CreateContact stores the first message to an item owner.
func (r *ContactRepo) CreateContact(ctx context.Context, senderID, receiverID, itemID int, message string) (models.Contact, error) {
	var contact models.Contact
	err := r.db.QueryRowxContext(ctx, `INSERT INTO contacts (sender_id, receiver_id, item_id, message) VALUES ($1, $2, $3, $4)
        RETURNING id, sender_id, receiver_id, item_id, message, created_at`, senderID, receiverID, itemID, message).
		Scan(&contact.ID, &contact.SenderID, &contact.ReceiverID, &contact.ItemID, &contact.Message, &contact.CreatedAt)
	return contact, err
}

// GetContact fetches a contact by id.
func (r *ContactRepo) GetContact(ctx context.Context, contactID int) (models.Contact, error) {
	var contact models.Contact
	err := r.db.GetContext(ctx, &contact, `SELECT id, sender_id, receiver_id, item_id, message, created_at FROM contacts WHERE id=$1`, contactID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contact{}, ErrContactNotFound
	}
	return contact, err
}

// ListContactsForUser returns the user's conversations, newest first.
func (r *ContactRepo) ListContactsForUser(ctx context.Context, userID int) ([]models.ContactSummary, error) {
	query := `SELECT c.id, c.sender_id, c.receiver_id, c.item_id, c.message, c.created_at,
            i.item_name,
            CASE WHEN c.sender_id=$1 THEN c.receiver_id ELSE c.sender_id END AS other_user_id,
            u.name AS other_user_name,
            (SELECT COUNT(*) FROM messages m WHERE m.contact_id = c.id AND m.receiver_id=$1 AND m.read_at IS NULL) AS unread_count
        FROM contacts c
        JOIN items i ON i.id = c.item_id
        JOIN users u ON u.id = CASE WHEN c.sender_id=$1 THEN c.receiver_id ELSE c.sender_id END
        WHERE c.sender_id=$1 OR c.receiver_id=$1
        ORDER BY c.created_at DESC`
	contacts := []models.ContactSummary{}
	err := r.db.SelectContext(ctx, &contacts, query, userID)
	return contacts, err
}
