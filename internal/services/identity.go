package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"findsync/internal/auth"
	"findsync/internal/models"
	"findsync/internal/observability"
	"findsync/internal/repositories"
)

// Identity is what a verified credential says about the caller.
type Identity struct {
	ExternalID   string
	CachedUserID int
	Name         string
	Email        string
}

// IdentityFromClaims copies the relevant claims.
func IdentityFromClaims(claims *auth.Claims) Identity {
	if claims == nil {
		return Identity{}
	}
	return Identity{
		ExternalID:   claims.ExternalID(),
		CachedUserID: claims.UserID,
		Name:         strings.TrimSpace(claims.Name),
		Email:        strings.TrimSpace(claims.Email),
	}
}

// IdentityResolver maps external identities to internal users, creating the
// user on first sight.
type IdentityResolver struct {
	users  repositories.UserRepository
	logger *zap.Logger
}

// NewIdentityResolver constructs an IdentityResolver.
func NewIdentityResolver(users repositories.UserRepository, logger *zap.Logger) *IdentityResolver {
	return &IdentityResolver{users: users, logger: logger}
}

// Resolve returns the internal user for identity. It performs at most one
// write: either a user insert or a name backfill.
func (r *IdentityResolver) Resolve(ctx context.Context, identity Identity) (models.User, error) {
	if strings.TrimSpace(identity.ExternalID) == "" {
		return models.User{}, UnauthorizedError("missing identity")
	}

	if identity.CachedUserID != 0 {
		return r.resolveCached(ctx, identity)
	}

	user, err := r.users.GetByExternalID(ctx, identity.ExternalID)
	switch {
	case err == nil:
		observability.IncIdentityResolution("existing")
		return r.backfillName(ctx, user, identity.Name), nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return r.create(ctx, identity)
	default:
		return models.User{}, StorageError("failed to load user", err)
	}
}

func (r *IdentityResolver) resolveCached(ctx context.Context, identity Identity) (models.User, error) {
	user, err := r.users.GetByID(ctx, identity.CachedUserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		observability.IncIdentityResolution("rejected")
		return models.User{}, UnauthorizedError("invalid user id")
	}
	if err != nil {
		return models.User{}, StorageError("failed to load user", err)
	}
	if user.ExternalID != identity.ExternalID {
		observability.IncIdentityResolution("rejected")
		return models.User{}, UnauthorizedError("invalid user id")
	}
	observability.IncIdentityResolution("cached")
	return user, nil
}

func (r *IdentityResolver) create(ctx context.Context, identity Identity) (models.User, error) {
	user, err := r.users.CreateUser(ctx, identity.ExternalID, optional(identity.Name), optional(identity.Email))
	if errors.Is(err, repositories.ErrEmailTaken) {
		// The claimed email belongs to another account; the identity still
		// gets a user, without an email.
		r.logger.Warn("claimed email already in use, creating user without email")
		user, err = r.users.CreateUser(ctx, identity.ExternalID, optional(identity.Name), nil)
	}
	if err == nil {
		observability.IncIdentityResolution("created")
		r.logger.Info("user created", zap.Int("user_id", user.ID))
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserConflict) {
		return models.User{}, StorageError("failed to create user", err)
	}

	// A concurrent request inserted the same identity first.
	user, err = r.users.GetByExternalID(ctx, identity.ExternalID)
	if err != nil {
		return models.User{}, StorageError("failed to create user", err)
	}
	observability.IncIdentityResolution("conflict_reread")
	return user, nil
}

func (r *IdentityResolver) backfillName(ctx context.Context, user models.User, claimed string) models.User {
	if user.DisplayName() != "" || claimed == "" {
		return user
	}
	if err := r.users.BackfillName(ctx, user.ID, claimed); err != nil {
		r.logger.Warn("name backfill failed", zap.Int("user_id", user.ID), zap.Error(err))
		return user
	}
	user.Name = &claimed
	return user
}
