package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"findsync/internal/models"
)

var ErrItemNotFound = errors.New("item not found")

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// ItemRepository abstracts item persistence.
type ItemRepository interface {
	CreateItem(ctx context.Context, shape ItemWriteShape, item models.Item, image *models.ItemImage) (models.Item, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error)
	GetItem(ctx context.Context, itemID int) (models.ItemDetail, error)
	ListItemsByUser(ctx context.Context, userID int) ([]models.Item, error)
	UpdateStatus(ctx context.Context, itemID int, status string) (models.Item, error)
	DeleteItem(ctx context.Context, itemID int) error
}

// ItemRepo is a sqlx implementation of ItemRepository.
type ItemRepo struct {
	db *sqlx.DB
}

// NewItemRepo constructs an ItemRepo.
func NewItemRepo(db *sqlx.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// CreateItem inserts the item with the given shape and, when image is set,
// its image row. Both inserts share one transaction.
func (r *ItemRepo) CreateItem(ctx context.Context, shape ItemWriteShape, item models.Item, image *models.ItemImage) (models.Item, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Item{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var stored models.Item
	stored, err = shape.insertItem(ctx, tx, item)
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item (%s): %w", shape.Name(), err)
	}

	if image != nil {
		if _, err = tx.ExecContext(ctx, `INSERT INTO item_images (item_id, image_url, image_data) VALUES ($1, $2, $3)`,
			stored.ID, image.ImageURL, image.ImageData); err != nil {
			return models.Item{}, fmt.Errorf("insert item image: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Item{}, err
	}
	return stored, nil
}

// ListItems returns items matching filter joined with owner fields, newest first.
func (r *ItemRepo) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, strings.ReplaceAll(cond, "?", fmt.Sprintf("$%d", len(args))))
	}
	if filter.PostType != "" {
		add("i.post_type = ?", filter.PostType)
	}
	if filter.Status != "" {
		add("i.status = ?", filter.Status)
	}
	if filter.Category != "" {
		add("i.category = ?", filter.Category)
	}
	if filter.Query != "" {
		add("(i.item_name ILIKE ? OR i.description ILIKE ?)", "%"+filter.Query+"%")
	}

	query := `SELECT i.*, u.name AS owner_name, u.email AS owner_email
        FROM items i JOIN users u ON u.id = i.user_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY i.created_at DESC, i.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	items := []models.ItemListing{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// GetItem fetches an item with owner fields and images.
func (r *ItemRepo) GetItem(ctx context.Context, itemID int) (models.ItemDetail, error) {
	var detail models.ItemDetail
	err := r.db.GetContext(ctx, &detail.ItemListing, `SELECT i.*, u.name AS owner_name, u.email AS owner_email
        FROM items i JOIN users u ON u.id = i.user_id WHERE i.id=$1`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ItemDetail{}, ErrItemNotFound
	}
	if err != nil {
		return models.ItemDetail{}, err
	}

	detail.Images = []models.ItemImage{}
	if err := r.db.SelectContext(ctx, &detail.Images, `SELECT id, item_id, image_url, created_at
        FROM item_images WHERE item_id=$1 ORDER BY id ASC`, itemID); err != nil {
		return models.ItemDetail{}, err
	}
	return detail, nil
}

// ListItemsByUser returns every item the user reported, newest first.
func (r *ItemRepo) ListItemsByUser(ctx context.Context, userID int) ([]models.Item, error) {
	items := []models.Item{}
	err := r.db.SelectContext(ctx, &items, `SELECT * FROM items WHERE user_id=$1 ORDER BY created_at DESC, id DESC`, userID)
	return items, err
}

// UpdateStatus sets the item status.
func (r *ItemRepo) UpdateStatus(ctx context.Context, itemID int, status string) (models.Item, error) {
	var item models.Item
	err := r.db.QueryRowxContext(ctx, `UPDATE items SET status=$2 WHERE id=$1 RETURNING *`, itemID, status).StructScan(&item)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Item{}, ErrItemNotFound
	}
	return item, err
}

// DeleteItem removes an item; images, contacts and messages cascade.
func (r *ItemRepo) DeleteItem(ctx context.Context, itemID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id=$1`, itemID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrItemNotFound
	}
	return nil
}
