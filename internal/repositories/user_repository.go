package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"findsync/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrUserConflict is returned when the external id is already taken,
	// usually by a concurrent first login for the same identity.
	ErrUserConflict = errors.New("user already exists")
	// ErrEmailTaken is returned when the email belongs to another user.
	ErrEmailTaken = errors.New("email already taken")
)

const usersEmailConstraint = "users_email_key"

const userColumns = `id, external_id, name, email, phone, location, created_at, updated_at`

// UserRepository abstracts user persistence.
type UserRepository interface {
	GetByID(ctx context.Context, userID int) (models.User, error)
	GetByExternalID(ctx context.Context, externalID string) (models.User, error)
	CreateUser(ctx context.Context, externalID string, name, email *string) (models.User, error)
	BackfillName(ctx context.Context, userID int, name string) error
	UpsertUser(ctx context.Context, externalID string, name, email *string) (models.User, error)
	UpdateProfile(ctx context.Context, userID int, phone, location *string) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetByID fetches a user by internal id.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByExternalID fetches a user by identity-provider id.
func (r *UserRepo) GetByExternalID(ctx context.Context, externalID string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE external_id=$1`, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// CreateUser inserts a new user. It returns ErrUserConflict when the
// external id exists and ErrEmailTaken when another user owns the email.
func (r *UserRepo) CreateUser(ctx context.Context, externalID string, name, email *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (external_id, name, email) VALUES ($1, $2, $3)
        ON CONFLICT (external_id) DO NOTHING
        RETURNING `+userColumns, externalID, name, email).StructScan(&user)
	if isEmailViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	if errors.Is(err, sql.ErrNoRows) || isUniqueViolation(err) {
		return models.User{}, ErrUserConflict
	}
	return user, err
}

// BackfillName sets the name only when none is stored yet.
func (r *UserRepo) BackfillName(ctx context.Context, userID int, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET name=$2, updated_at=NOW()
        WHERE id=$1 AND (name IS NULL OR name = '')`, userID, name)
	return err
}

// UpsertUser creates the user or refreshes name and email from the latest claims.
func (r *UserRepo) UpsertUser(ctx context.Context, externalID string, name, email *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users (external_id, name, email) VALUES ($1, $2, $3)
        ON CONFLICT (external_id) DO UPDATE SET
            name = COALESCE(EXCLUDED.name, users.name),
            email = COALESCE(EXCLUDED.email, users.email),
            updated_at = NOW()
        RETURNING `+userColumns, externalID, name, email).StructScan(&user)
	if isUniqueViolation(err) {
		return models.User{}, ErrEmailTaken
	}
	return user, err
}

// UpdateProfile replaces the contact details the user manages themselves.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, phone, location *string) (models.User, error) {
	var user models.User
	err := r.db.QueryRowxContext(ctx, `UPDATE users SET phone=$2, location=$3, updated_at=NOW()
        WHERE id=$1 RETURNING `+userColumns, userID, phone, location).StructScan(&user)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isEmailViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" && pqErr.Constraint == usersEmailConstraint
}
