package models

import "time"

// Contact is the first message a prospective claimant sends an item owner.
type Contact struct {
	ID         int       `db:"id" json:"id"`
	SenderID   int       `db:"sender_id" json:"sender_id"`
	ReceiverID int       `db:"receiver_id" json:"receiver_id"`
	ItemID     int       `db:"item_id" json:"item_id"`
	Message    string    `db:"message" json:"message"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ContactSummary is a contact as seen from one participant.
type ContactSummary struct {
	Contact
	ItemName      string  `db:"item_name" json:"item_name"`
	OtherUserID   int     `db:"other_user_id" json:"other_user_id"`
	OtherUserName *string `db:"other_user_name" json:"other_user_name"`
	UnreadCount   int     `db:"unread_count" json:"unread_count"`
}

// OtherParty returns the participant that is not userID.
func (c Contact) OtherParty(userID int) int {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// HasParticipant reports whether userID is one of the two users.
func (c Contact) HasParticipant(userID int) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}
