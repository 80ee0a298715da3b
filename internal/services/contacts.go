package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"findsync/internal/models"
	"findsync/internal/repositories"
)

// ContactService manages contacts with item owners and their conversations.
type ContactService struct {
	contacts repositories.ContactRepository
	messages repositories.MessageRepository
	items    repositories.ItemRepository
	resolver *IdentityResolver
	logger   *zap.Logger
}

// NewContactService constructs a ContactService.
func NewContactService(contacts repositories.ContactRepository, messages repositories.MessageRepository, items repositories.ItemRepository, resolver *IdentityResolver, logger *zap.Logger) *ContactService {
	return &ContactService{contacts: contacts, messages: messages, items: items, resolver: resolver, logger: logger}
}

// Create sends the first message to the owner of itemID.
func (s *ContactService) Create(ctx context.Context, identity Identity, itemID int, message string) (models.Contact, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return models.Contact{}, ValidationError("message is required")
	}
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return models.Contact{}, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if errors.Is(err, repositories.ErrItemNotFound) {
		return models.Contact{}, NotFoundError("item not found")
	}
	if err != nil {
		return models.Contact{}, StorageError("failed to load item", err)
	}
	if item.UserID == user.ID {
		return models.Contact{}, ValidationError("cannot contact yourself about your own item")
	}

	contact, err := s.contacts.CreateContact(ctx, user.ID, item.UserID, itemID, message)
	if err != nil {
		return models.Contact{}, StorageError("failed to create contact", err)
	}
	s.logger.Info("contact created", zap.Int("contact_id", contact.ID), zap.Int("item_id", itemID))
	return contact, nil
}

// List returns the caller's conversations.
func (s *ContactService) List(ctx context.Context, identity Identity) ([]models.ContactSummary, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListContactsForUser(ctx, user.ID)
	if err != nil {
		return nil, StorageError("failed to load contacts", err)
	}
	return contacts, nil
}

// Messages returns a conversation and marks the caller's incoming messages read.
func (s *ContactService) Messages(ctx context.Context, identity Identity, contactID int) ([]models.Message, error) {
	user, contact, err := s.participant(ctx, identity, contactID)
	if err != nil {
		return nil, err
	}
	if _, err := s.messages.MarkRead(ctx, contact.ID, user.ID); err != nil {
		return nil, StorageError("failed to mark messages read", err)
	}
	msgs, err := s.messages.ListMessages(ctx, contact.ID)
	if err != nil {
		return nil, StorageError("failed to load messages", err)
	}
	return msgs, nil
}

// Reply appends a message addressed to the other participant.
func (s *ContactService) Reply(ctx context.Context, identity Identity, contactID int, body string) (models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return models.Message{}, ValidationError("message is required")
	}
	user, contact, err := s.participant(ctx, identity, contactID)
	if err != nil {
		return models.Message{}, err
	}
	msg, err := s.messages.CreateMessage(ctx, contact.ID, user.ID, contact.OtherParty(user.ID), body)
	if err != nil {
		return models.Message{}, StorageError("failed to store message", err)
	}
	return msg, nil
}

// UnreadCount counts messages addressed to the caller that were never viewed.
func (s *ContactService) UnreadCount(ctx context.Context, identity Identity) (int, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return 0, err
	}
	count, err := s.messages.CountUnread(ctx, user.ID)
	if err != nil {
		return 0, StorageError("failed to count messages", err)
	}
	return count, nil
}

func (s *ContactService) participant(ctx context.Context, identity Identity, contactID int) (models.User, models.Contact, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return models.User{}, models.Contact{}, err
	}
	contact, err := s.contacts.GetContact(ctx, contactID)
	if errors.Is(err, repositories.ErrContactNotFound) {
		return models.User{}, models.Contact{}, NotFoundError("contact not found")
	}
	if err != nil {
		return models.User{}, models.Contact{}, StorageError("failed to load contact", err)
	}
	if !contact.HasParticipant(user.ID) {
		return models.User{}, models.Contact{}, ForbiddenError("not a participant")
	}
	return user, contact, nil
}
