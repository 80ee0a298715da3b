package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"findsync/internal/models"
)

// ItemWriteShape is the column set used to insert an item. The items table
// exists in two versions, with and without reporter_name, and each version
// has its own shape.
type ItemWriteShape interface {
	Name() string
	insertItem(ctx context.Context, tx *sqlx.Tx, item models.Item) (models.Item, error)
}

var (
	// BaseItemInsert writes items without the reporter_name column.
	BaseItemInsert ItemWriteShape = baseItemInsert{}
	// ReporterItemInsert writes items including reporter_name.
	ReporterItemInsert ItemWriteShape = reporterItemInsert{}
)

// ShapeFor selects the insert shape for the current schema.
func ShapeFor(hasReporterName bool) ItemWriteShape {
	if hasReporterName {
		return ReporterItemInsert
	}
	return BaseItemInsert
}

type baseItemInsert struct{}

func (baseItemInsert) Name() string { return "items_base" }

func (baseItemInsert) insertItem(ctx context.Context, tx *sqlx.Tx, item models.Item) (models.Item, error) {
	var stored models.Item
	err := tx.QueryRowxContext(ctx, `INSERT INTO items
        (user_id, item_name, description, category, post_type, location, phone, image_url, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING id, user_id, item_name, description, category, post_type, location, phone, image_url, status, created_at`,
		item.UserID, item.ItemName, item.Description, item.Category, item.PostType,
		item.Location, item.Phone, item.ImageURL, item.Status).StructScan(&stored)
	return stored, err
}

type reporterItemInsert struct{}

func (reporterItemInsert) Name() string { return "items_with_reporter" }

func (reporterItemInsert) insertItem(ctx context.Context, tx *sqlx.Tx, item models.Item) (models.Item, error) {
	var stored models.Item
	err := tx.QueryRowxContext(ctx, `INSERT INTO items
        (user_id, item_name, description, category, post_type, location, phone, image_url, status, reporter_name)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, user_id, item_name, description, category, post_type, location, phone, image_url, status, reporter_name, created_at`,
		item.UserID, item.ItemName, item.Description, item.Category, item.PostType,
		item.Location, item.Phone, item.ImageURL, item.Status, item.ReporterName).StructScan(&stored)
	return stored, err
}
