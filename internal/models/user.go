package models

import "time"

// User is a FindSync account keyed by the identity provider's external id.
type User struct {
	ID         int       `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"-"`
	Name       *string   `db:"name" json:"name"`
	Email      *string   `db:"email" json:"email"`
	Phone      *string   `db:"phone" json:"phone"`
	Location   *string   `db:"location" json:"location"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// DisplayName returns the stored name or "" when none is set.
func (u User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}
