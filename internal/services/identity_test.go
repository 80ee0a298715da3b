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

func strPtr(s string) *string { return &s }

func TestResolveRejectsEmptyIdentity(t *testing.T) {
	resolver := NewIdentityResolver(new(mocks.UserRepositoryMock), zap.NewNop())

	_, err := resolver.Resolve(context.Background(), Identity{})

	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestResolveCachedIDMatchingExternalID(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByID", mock.Anything, 7).Return(models.User{ID: 7, ExternalID: "fb-1"}, nil).Once()

	user, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", CachedUserID: 7})

	require.NoError(t, err)
	assert.Equal(t, 7, user.ID)
	users.AssertNotCalled(t, "GetByExternalID", mock.Anything, mock.Anything)
}

func TestResolveCachedIDOfAnotherIdentity(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByID", mock.Anything, 7).Return(models.User{ID: 7, ExternalID: "fb-2"}, nil).Once()

	_, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", CachedUserID: 7})

	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestResolveCachedIDMissingRow(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByID", mock.Anything, 7).Return(models.User{}, repositories.ErrUserNotFound).Once()

	_, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", CachedUserID: 7})

	assert.Equal(t, KindUnauthorized, KindOf(err))
}

func TestResolveBackfillsEmptyName(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-1").Return(models.User{ID: 1, ExternalID: "fb-1"}, nil).Once()
	users.On("BackfillName", mock.Anything, 1, "Dana").Return(nil).Once()

	user, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", Name: "Dana"})

	require.NoError(t, err)
	assert.Equal(t, "Dana", user.DisplayName())
	users.AssertExpectations(t)
}

func TestResolveKeepsStoredName(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-1").Return(models.User{ID: 1, ExternalID: "fb-1", Name: strPtr("Dee")}, nil).Once()

	user, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", Name: "Dana"})

	require.NoError(t, err)
	assert.Equal(t, "Dee", user.DisplayName())
	users.AssertNotCalled(t, "BackfillName", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveRereadsAfterConcurrentInsert(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-1").Return(models.User{}, repositories.ErrUserNotFound).Once()
	users.On("CreateUser", mock.Anything, "fb-1", mock.Anything, mock.Anything).Return(models.User{}, repositories.ErrUserConflict).Once()
	users.On("GetByExternalID", mock.Anything, "fb-1").Return(models.User{ID: 3, ExternalID: "fb-1"}, nil).Once()

	user, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1", Name: "Dana"})

	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)
	users.AssertExpectations(t)
}

func TestResolveStorageFailure(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-1").Return(models.User{}, assert.AnError).Once()

	_, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-1"})

	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestResolveRetriesWithoutTakenEmail(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	resolver := NewIdentityResolver(users, zap.NewNop())

	users.On("GetByExternalID", mock.Anything, "fb-new").Return(models.User{}, repositories.ErrUserNotFound).Once()
	users.On("CreateUser", mock.Anything, "fb-new", mock.Anything, mock.MatchedBy(func(email *string) bool {
		return email != nil && *email == "dana@example.com"
	})).Return(models.User{}, repositories.ErrEmailTaken).Once()
	users.On("CreateUser", mock.Anything, "fb-new", mock.Anything, (*string)(nil)).
		Return(models.User{ID: 9, ExternalID: "fb-new", Name: strPtr("Dana")}, nil).Once()

	user, err := resolver.Resolve(context.Background(), Identity{ExternalID: "fb-new", Name: "Dana", Email: "dana@example.com"})

	require.NoError(t, err)
	assert.Equal(t, 9, user.ID)
	assert.Nil(t, user.Email)
	users.AssertExpectations(t)
	users.AssertNumberOfCalls(t, "GetByExternalID", 1)
}
