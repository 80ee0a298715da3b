package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"findsync/internal/mocks"
	"findsync/internal/models"
	"findsync/internal/repositories"
)

func TestContactCreateAddressesItemOwner(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	items := new(mocks.ItemRepositoryMock)
	contacts := new(mocks.ContactRepositoryMock)
	svc := NewContactService(contacts, new(mocks.MessageRepositoryMock), items, NewIdentityResolver(users, zap.NewNop()), zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-2").Return(models.User{ID: 2, ExternalID: "fb-2", Name: strPtr("Sam")}, nil).Once()
	items.On("GetItem", mock.Anything, 9).Return(models.ItemDetail{ItemListing: models.ItemListing{Item: models.Item{ID: 9, UserID: 1}}}, nil).Once()
	contacts.On("CreateContact", mock.Anything, 2, 1, 9, "I think that's mine").Return(models.Contact{ID: 4, SenderID: 2, ReceiverID: 1, ItemID: 9}, nil).Once()

	contact, err := svc.Create(context.Background(), Identity{ExternalID: "fb-2"}, 9, " I think that's mine ")

	require.NoError(t, err)
	assert.Equal(t, 4, contact.ID)
	contacts.AssertExpectations(t)
}

func TestContactCreateMissingItem(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	items := new(mocks.ItemRepositoryMock)
	svc := NewContactService(new(mocks.ContactRepositoryMock), new(mocks.MessageRepositoryMock), items, NewIdentityResolver(users, zap.NewNop()), zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-2").Return(models.User{ID: 2, ExternalID: "fb-2"}, nil).Once()
	items.On("GetItem", mock.Anything, 9).Return(models.ItemDetail{}, repositories.ErrItemNotFound).Once()

	_, err := svc.Create(context.Background(), Identity{ExternalID: "fb-2"}, 9, "hello")

	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestContactCreateEmptyMessage(t *testing.T) {
	svc := NewContactService(nil, nil, nil, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), Identity{ExternalID: "fb-2"}, 9, "   ")

	assert.Equal(t, KindValidation, KindOf(err))
}

func TestSyncUpserts(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	svc := NewUserService(users, NewIdentityResolver(users, zap.NewNop()))

	users.On("UpsertUser", mock.Anything, "fb-1", mock.MatchedBy(func(name *string) bool {
		return name != nil && *name == "Dana"
	}), mock.MatchedBy(func(email *string) bool {
		return email != nil && *email == "dana@example.com"
	})).Return(models.User{ID: 1, ExternalID: "fb-1"}, nil).Once()

	user, err := svc.Sync(context.Background(), Identity{ExternalID: "fb-1", Name: "Dana", Email: "dana@example.com"})

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	users.AssertExpectations(t)
}
