package services

import (
	"context"
	"errors"
	"strings"

	"findsync/internal/models"
	"findsync/internal/repositories"
)

// UserService exposes account operations for the authenticated caller.
type UserService struct {
	users    repositories.UserRepository
	resolver *IdentityResolver
}

// NewUserService constructs a UserService.
func NewUserService(users repositories.UserRepository, resolver *IdentityResolver) *UserService {
	return &UserService{users: users, resolver: resolver}
}

// Sync creates the caller's user or refreshes name and email from the
// latest claims.
func (s *UserService) Sync(ctx context.Context, identity Identity) (models.User, error) {
	if strings.TrimSpace(identity.ExternalID) == "" {
		return models.User{}, UnauthorizedError("missing identity")
	}
	user, err := s.users.UpsertUser(ctx, identity.ExternalID, optional(identity.Name), optional(identity.Email))
	if errors.Is(err, repositories.ErrEmailTaken) {
		return models.User{}, ValidationError("email is already used by another account")
	}
	if err != nil {
		return models.User{}, StorageError("failed to sync user", err)
	}
	return user, nil
}

// Me resolves the caller.
func (s *UserService) Me(ctx context.Context, identity Identity) (models.User, error) {
	return s.resolver.Resolve(ctx, identity)
}

// UpdateProfile replaces the caller's phone and location.
func (s *UserService) UpdateProfile(ctx context.Context, identity Identity, phone, location string) (models.User, error) {
	user, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return models.User{}, err
	}
	updated, err := s.users.UpdateProfile(ctx, user.ID, optional(phone), optional(location))
	if errors.Is(err, repositories.ErrUserNotFound) {
		return models.User{}, NotFoundError("user not found")
	}
	if err != nil {
		return models.User{}, StorageError("failed to update user", err)
	}
	return updated, nil
}
