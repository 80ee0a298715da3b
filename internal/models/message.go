package models

import "time"

// Message is a reply inside a contact conversation.
type Message struct {
	ID         int        `db:"id" json:"id"`
	ContactID  int        `db:"contact_id" json:"contact_id"`
	SenderID   int        `db:"sender_id" json:"sender_id"`
	ReceiverID int        `db:"receiver_id" json:"receiver_id"`
	Body       string     `db:"body" json:"body"`
	SentAt     time.Time  `db:"sent_at" json:"sent_at"`
	ReadAt     *time.Time `db:"read_at" json:"read_at"`
}
