package models

import "time"

const (
	PostTypeLost  = "lost"
	PostTypeFound = "found"

	StatusOpen    = "open"
	StatusMatched = "matched"
	StatusClosed  = "closed"

	DefaultCategory = "Other"
	AnonymousName   = "Anonymous"
)

// Item is a lost or found report.
type Item struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	ItemName     string    `db:"item_name" json:"item_name"`
	Description  *string   `db:"description" json:"description"`
	Category     string    `db:"category" json:"category"`
	PostType     string    `db:"post_type" json:"post_type"`
	Location     string    `db:"location" json:"location"`
	Phone        string    `db:"phone" json:"phone"`
	ImageURL     *string   `db:"image_url" json:"image_url"`
	ReporterName *string   `db:"reporter_name" json:"reporter_name,omitempty"`
	Status       string    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ItemListing is an item joined with its owner's display fields.
type ItemListing struct {
	Item
	OwnerName  *string `db:"owner_name" json:"owner_name"`
	OwnerEmail *string `db:"owner_email" json:"owner_email,omitempty"`
}

// ItemImage is an image attached to an item.
type ItemImage struct {
	ID        int       `db:"id" json:"id"`
	ItemID    int       `db:"item_id" json:"item_id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	ImageData []byte    `db:"image_data" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ItemDetail is a listing plus every recorded image.
type ItemDetail struct {
	ItemListing
	Images []ItemImage `json:"images"`
}

// ItemFilter narrows item listings. Empty fields do not filter.
type ItemFilter struct {
	PostType string
	Status   string
	Category string
	Query    string
	Limit    int
	Offset   int
}

// ItemEvent is broadcast to feed subscribers over WebSocket.
type ItemEvent struct {
	Type string `json:"type"`
	Item *Item  `json:"item,omitempty"`
}
