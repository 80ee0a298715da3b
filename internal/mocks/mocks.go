package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"findsync/internal/models"
	"findsync/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	args := m.Called(ctx, externalID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, externalID string, name, email *string) (models.User, error) {
	args := m.Called(ctx, externalID, name, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) BackfillName(ctx context.Context, userID int, name string) error {
	args := m.Called(ctx, userID, name)
	return args.Error(0)
}

func (m *UserRepositoryMock) UpsertUser(ctx context.Context, externalID string, name, email *string) (models.User, error) {
	args := m.Called(ctx, externalID, name, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) UpdateProfile(ctx context.Context, userID int, phone, location *string) (models.User, error) {
	args := m.Called(ctx, userID, phone, location)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type ItemRepositoryMock struct {
	mock.Mock
}

func (m *ItemRepositoryMock) CreateItem(ctx context.Context, shape repositories.ItemWriteShape, item models.Item, image *models.ItemImage) (models.Item, error) {
	args := m.Called(ctx, shape, item, image)
	var stored models.Item
	if val := args.Get(0); val != nil {
		stored = val.(models.Item)
	}
	return stored, args.Error(1)
}

func (m *ItemRepositoryMock) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.ItemListing, error) {
	args := m.Called(ctx, filter)
	var list []models.ItemListing
	if val := args.Get(0); val != nil {
		list = val.([]models.ItemListing)
	}
	return list, args.Error(1)
}

func (m *ItemRepositoryMock) GetItem(ctx context.Context, itemID int) (models.ItemDetail, error) {
	args := m.Called(ctx, itemID)
	var item models.ItemDetail
	if val := args.Get(0); val != nil {
		item = val.(models.ItemDetail)
	}
	return item, args.Error(1)
}

func (m *ItemRepositoryMock) ListItemsByUser(ctx context.Context, userID int) ([]models.Item, error) {
	args := m.Called(ctx, userID)
	var list []models.Item
	if val := args.Get(0); val != nil {
		list = val.([]models.Item)
	}
	return list, args.Error(1)
}

func (m *ItemRepositoryMock) UpdateStatus(ctx context.Context, itemID int, status string) (models.Item, error) {
	args := m.Called(ctx, itemID, status)
	var item models.Item
	if val := args.Get(0); val != nil {
		item = val.(models.Item)
	}
	return item, args.Error(1)
}

func (m *ItemRepositoryMock) DeleteItem(ctx context.Context, itemID int) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

type ContactRepositoryMock struct {
	mock.Mock
}

func (m *ContactRepositoryMock) CreateContact(ctx context.Context, senderID, receiverID, itemID int, message string) (models.Contact, error) {
	args := m.Called(ctx, senderID, receiverID, itemID, message)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) GetContact(ctx context.Context, contactID int) (models.Contact, error) {
	args := m.Called(ctx, contactID)
	var contact models.Contact
	if val := args.Get(0); val != nil {
		contact = val.(models.Contact)
	}
	return contact, args.Error(1)
}

func (m *ContactRepositoryMock) ListContactsForUser(ctx context.Context, userID int) ([]models.ContactSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.ContactSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.ContactSummary)
	}
	return list, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, contactID, senderID, receiverID int, body string) (models.Message, error) {
	args := m.Called(ctx, contactID, senderID, receiverID, body)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, contactID int) ([]models.Message, error) {
	args := m.Called(ctx, contactID)
	var list []models.Message
	if val := args.Get(0); val != nil {
		list = val.([]models.Message)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRead(ctx context.Context, contactID, receiverID int) (int64, error) {
	args := m.Called(ctx, contactID, receiverID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, userID int) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type SchemaProbeMock struct {
	mock.Mock
}

func (m *SchemaProbeMock) HasReporterName(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
