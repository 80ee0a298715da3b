package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"findsync/internal/models"
	"findsync/internal/observability"
	"findsync/internal/repositories"
)

// RoutingKeyItemCreated is the event routing key for new items.
const RoutingKeyItemCreated = "items.created"

// ItemBroadcaster pushes new items to connected real-time subscribers.
type ItemBroadcaster interface {
	BroadcastNewItem(ctx context.Context, item models.Item) error
}

// EventPublisher publishes domain events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// ItemCreatedEvent is published after an item is stored.
type ItemCreatedEvent struct {
	EventType  string      `json:"event_type"`
	OccurredAt string      `json:"occurred_at"`
	Item       models.Item `json:"item"`
}

// CreateItemInput is a candidate item report.
type CreateItemInput struct {
	Identity    Identity
	ItemName    string
	Description string
	Location    string
	Category    string
	Phone       string
	PostType    string
	// ImageURL is a reference supplied by the caller.
	ImageURL string
	// UploadedImageURL is the reference returned by the upload handler and
	// wins over ImageURL.
	UploadedImageURL string
}

// ItemService owns item ingestion and item lifecycle operations.
type ItemService struct {
	items       repositories.ItemRepository
	users       repositories.UserRepository
	resolver    *IdentityResolver
	probe       repositories.SchemaProbe
	broadcaster ItemBroadcaster
	events      EventPublisher
	logger      *zap.Logger
}

// NewItemService builds an ItemService. broadcaster and events may be nil.
func NewItemService(items repositories.ItemRepository, users repositories.UserRepository, resolver *IdentityResolver, probe repositories.SchemaProbe, broadcaster ItemBroadcaster, events EventPublisher, logger *zap.Logger) *ItemService {
	return &ItemService{
		items:       items,
		users:       users,
		resolver:    resolver,
		probe:       probe,
		broadcaster: broadcaster,
		events:      events,
		logger:      logger,
	}
}

// Create validates, normalizes and stores a new item, then announces it.
func (s *ItemService) Create(ctx context.Context, in CreateItemInput) (models.Item, error) {
	ctx, span := otel.Tracer("findsync/services").Start(ctx, "items.create")
	defer span.End()

	if err := CheckCreateInput(in); err != nil {
		return models.Item{}, err
	}

	user, err := s.resolver.Resolve(ctx, in.Identity)
	if err != nil {
		return models.Item{}, err
	}

	item := models.Item{
		UserID:      user.ID,
		ItemName:    strings.TrimSpace(in.ItemName),
		Description: optional(in.Description),
		Category:    normalizeCategory(in.Category),
		PostType:    NormalizePostType(in.PostType),
		Location:    strings.TrimSpace(in.Location),
		Phone:       strings.TrimSpace(in.Phone),
		Status:      models.StatusOpen,
	}

	var image *models.ItemImage
	if ref := imageReference(in); ref != "" {
		item.ImageURL = &ref
		image = &models.ItemImage{ImageURL: ref}
	}

	hasReporterName, err := s.probe.HasReporterName(ctx)
	if err != nil {
		return models.Item{}, StorageError("failed to create item", err)
	}
	observability.IncSchemaProbe(hasReporterName)
	if hasReporterName {
		name := s.reporterName(ctx, user, in.Identity.Name)
		item.ReporterName = &name
	}

	shape := repositories.ShapeFor(hasReporterName)
	span.SetAttributes(attribute.String("item.write_shape", shape.Name()), attribute.Int("user.id", user.ID))

	stored, err := s.items.CreateItem(ctx, shape, item, image)
	if err != nil {
		return models.Item{}, StorageError("failed to create item", err)
	}

	observability.IncItemCreated(stored.PostType)
	s.logger.Info("item created",
		zap.Int("item_id", stored.ID),
		zap.Int("user_id", stored.UserID),
		zap.String("post_type", stored.PostType),
		zap.String("write_shape", shape.Name()),
	)
	s.announce(ctx, stored)
	return stored, nil
}

// CheckCreateInput runs the checks that need no storage: identity presence,
// then required fields. Callers use it to reject a report before storing its
// image.
func CheckCreateInput(in CreateItemInput) error {
	if strings.TrimSpace(in.Identity.ExternalID) == "" {
		return UnauthorizedError("missing identity")
	}
	var missing []string
	if strings.TrimSpace(in.ItemName) == "" {
		missing = append(missing, "item name")
	}
	if strings.TrimSpace(in.Location) == "" {
		missing = append(missing, "location")
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, "mobile number")
	}
	if len(missing) > 0 {
		return ValidationError(requiredMessage(missing))
	}
	return nil
}

func imageReference(in CreateItemInput) string {
	if ref := strings.TrimSpace(in.UploadedImageURL); ref != "" {
		return ref
	}
	return strings.TrimSpace(in.ImageURL)
}

// reporterName picks stored name, then claimed name (remembered on the
// user), then the anonymous placeholder. The result is never empty.
func (s *ItemService) reporterName(ctx context.Context, user models.User, claimed string) string {
	if name := strings.TrimSpace(user.DisplayName()); name != "" {
		return name
	}
	if claimed = strings.TrimSpace(claimed); claimed != "" {
		if err := s.users.BackfillName(ctx, user.ID, claimed); err != nil {
			s.logger.Warn("name backfill failed", zap.Int("user_id", user.ID), zap.Error(err))
		}
		return claimed
	}
	return models.AnonymousName
}

func (s *ItemService) announce(ctx context.Context, item models.Item) {
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastNewItem(ctx, item); err != nil {
			s.logger.Warn("new item broadcast failed", zap.Int("item_id", item.ID), zap.Error(err))
		}
	}
	if s.events != nil {
		event := ItemCreatedEvent{
			EventType:  RoutingKeyItemCreated,
			OccurredAt: time.Now().UTC().Format(time.RFC3339Nano),
			Item:       item,
		}
		if err := s.events.Publish(ctx, RoutingKeyItemCreated, event); err != nil {
			s.logger.Warn("item event publish failed", zap.Int("item_id", item.ID), zap.Error(err))
		}
	}
}

// List returns items matching filter. Status defaults to open.
func (s *ItemService) List(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error) {
	if filter.PostType != "" && !IsValidPostType(filter.PostType) {
		return nil, ValidationError("post_type must be lost or found")
	}
	if filter.Status == "" {
		filter.Status = models.StatusOpen
	}
	if !IsValidStatus(filter.Status) {
		return nil, ValidationError("status must be open, matched or closed")
	}
	items, err := s.items.ListItems(ctx, filter)
	if err != nil {
		return nil, StorageError("failed to load items", err)
	}
	return items, nil
}

// Get returns a single item with its images.
func (s *ItemService) Get(ctx context.Context, itemID int) (models.ItemDetail, error) {
	item, err := s.items.GetItem(ctx, itemID)
	if errors.Is(err, repositories.ErrItemNotFound) {
		return models.ItemDetail{}, NotFoundError("item not found")
	}
	if err != nil {
		return models.ItemDetail{}, StorageError("failed to load item", err)
	}
	return item, nil
}

// ListMine returns every item the caller reported.
func (s *ItemService) ListMine(ctx context.Context, identity Identity) ([]models.Item, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListItemsByUser(ctx, user.ID)
	if err != nil {
		return nil, StorageError("failed to load items", err)
	}
	return items, nil
}

// UpdateStatus lets the owner mark an item open, matched or closed.
func (s *ItemService) UpdateStatus(ctx context.Context, identity Identity, itemID int, status string) (models.Item, error) {
	if !IsValidStatus(status) {
		return models.Item{}, ValidationError("status must be open, matched or closed")
	}
	if _, err := s.ownedItem(ctx, identity, itemID); err != nil {
		return models.Item{}, err
	}
	item, err := s.items.UpdateStatus(ctx, itemID, status)
	if errors.Is(err, repositories.ErrItemNotFound) {
		return models.Item{}, NotFoundError("item not found")
	}
	if err != nil {
		return models.Item{}, StorageError("failed to update item", err)
	}
	return item, nil
}

// Delete removes an item owned by the caller.
func (s *ItemService) Delete(ctx context.Context, identity Identity, itemID int) error {
	if _, err := s.ownedItem(ctx, identity, itemID); err != nil {
		return err
	}
	err := s.items.DeleteItem(ctx, itemID)
	if errors.Is(err, repositories.ErrItemNotFound) {
		return NotFoundError("item not found")
	}
	if err != nil {
		return StorageError("failed to delete item", err)
	}
	return nil
}

func (s *ItemService) ownedItem(ctx context.Context, identity Identity, itemID int) (models.ItemDetail, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return models.ItemDetail{}, err
	}
	item, err := s.Get(ctx, itemID)
	if err != nil {
		return models.ItemDetail{}, err
	}
	if item.UserID != user.ID {
		return models.ItemDetail{}, ForbiddenError("not the item owner")
	}
	return item, nil
}
