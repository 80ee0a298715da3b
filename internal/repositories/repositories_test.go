package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findsync/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func strPtr(s string) *string { return &s }

var itemColumns = []string{"id", "user_id", "item_name", "description", "category", "post_type", "location", "phone", "image_url", "status", "created_at"}

func TestCatalogProbeHasReporterName(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`information_schema.columns`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := NewCatalogProbe(db).HasReporterName(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

type countingProbe struct {
	calls int
	value bool
	err   error
}

func (p *countingProbe) HasReporterName(context.Context) (bool, error) {
	p.calls++
	return p.value, p.err
}

func TestCachedProbeCachesUntilTTL(t *testing.T) {
	inner := &countingProbe{value: true}
	probe := NewCachedProbe(inner, time.Minute)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	probe.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := probe.HasReporterName(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, 1, inner.calls)

	now = now.Add(2 * time.Minute)
	_, err := probe.HasReporterName(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProbeInvalidate(t *testing.T) {
	inner := &countingProbe{value: false}
	probe := NewCachedProbe(inner, time.Hour)

	_, _ = probe.HasReporterName(context.Background())
	inner.value = true
	ok, _ := probe.HasReporterName(context.Background())
	assert.False(t, ok)

	probe.Invalidate()
	ok, _ = probe.HasReporterName(context.Background())
	assert.True(t, ok)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProbeZeroTTLAlwaysProbes(t *testing.T) {
	inner := &countingProbe{value: true}
	probe := NewCachedProbe(inner, 0)

	_, _ = probe.HasReporterName(context.Background())
	_, _ = probe.HasReporterName(context.Background())
	assert.Equal(t, 2, inner.calls)
}

func TestCachedProbeDoesNotCacheErrors(t *testing.T) {
	inner := &countingProbe{err: errors.New("catalog down")}
	probe := NewCachedProbe(inner, time.Hour)

	_, err := probe.HasReporterName(context.Background())
	require.Error(t, err)

	inner.err = nil
	inner.value = true
	ok, err := probe.HasReporterName(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestShapeFor(t *testing.T) {
	assert.Equal(t, "items_with_reporter", ShapeFor(true).Name())
	assert.Equal(t, "items_base", ShapeFor(false).Name())
}

func TestCreateUserConflict(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("fb-1", nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(db).CreateUser(context.Background(), "fb-1", nil, nil)
	assert.ErrorIs(t, err, ErrUserConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserEmailTaken(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("fb-new", nil, "dana@example.com").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	_, err := NewUserRepo(db).CreateUser(context.Background(), "fb-new", nil, strPtr("dana@example.com"))
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.NotErrorIs(t, err, ErrUserConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserExternalIDViolation(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("fb-1", nil, nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_external_id_key"})

	_, err := NewUserRepo(db).CreateUser(context.Background(), "fb-1", nil, nil)
	assert.ErrorIs(t, err, ErrUserConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("fb-1", "Dana", "dana@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "external_id", "name", "email", "phone", "location", "created_at", "updated_at"}).
			AddRow(4, "fb-1", "Dana", "dana@example.com", nil, nil, now, now))

	user, err := NewUserRepo(db).CreateUser(context.Background(), "fb-1", strPtr("Dana"), strPtr("dana@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 4, user.ID)
	assert.Equal(t, "Dana", user.DisplayName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByExternalIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM users WHERE external_id`).WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewUserRepo(db).GetByExternalID(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateItemWithImageCommits(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(append(append([]string{}, itemColumns[:10]...), "reporter_name", "created_at")).
			AddRow(9, 4, "Wallet", nil, "Other", "found", "Lobby", "5551234567", "/uploads/a.png", "open", "Dana", now))
	mock.ExpectExec(`INSERT INTO item_images`).
		WithArgs(9, "/uploads/a.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	item := models.Item{UserID: 4, ItemName: "Wallet", Category: "Other", PostType: "found", Location: "Lobby",
		Phone: "5551234567", ImageURL: strPtr("/uploads/a.png"), Status: "open", ReporterName: strPtr("Dana")}
	stored, err := NewItemRepo(db).CreateItem(context.Background(), ReporterItemInsert, item, &models.ItemImage{ImageURL: "/uploads/a.png"})
	require.NoError(t, err)
	assert.Equal(t, 9, stored.ID)
	require.NotNil(t, stored.ReporterName)
	assert.Equal(t, "Dana", *stored.ReporterName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemRollsBackWhenImageInsertFails(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(9, 4, "Wallet", nil, "Other", "lost", "Lobby", "5551234567", "/uploads/a.png", "open", time.Now()))
	mock.ExpectExec(`INSERT INTO item_images`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	item := models.Item{UserID: 4, ItemName: "Wallet", Category: "Other", PostType: "lost", Location: "Lobby", Phone: "5551234567", Status: "open"}
	_, err := NewItemRepo(db).CreateItem(context.Background(), BaseItemInsert, item, &models.ItemImage{ImageURL: "/uploads/a.png"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateItemWithoutImageSkipsImageInsert(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO items`).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(10, 4, "Keys", nil, "Other", "lost", "Gym", "5550000000", nil, "open", time.Now()))
	mock.ExpectCommit()

	item := models.Item{UserID: 4, ItemName: "Keys", Category: "Other", PostType: "lost", Location: "Gym", Phone: "5550000000", Status: "open"}
	stored, err := NewItemRepo(db).CreateItem(context.Background(), BaseItemInsert, item, nil)
	require.NoError(t, err)
	assert.Nil(t, stored.ReporterName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListItemsAppliesFilters(t *testing.T) {
	db, mock := newMockDB(t)
	cols := append(append([]string{}, itemColumns...), "owner_name", "owner_email")
	mock.ExpectQuery(`WHERE i.post_type = \$1 AND i.status = \$2 ORDER BY .* LIMIT \$3 OFFSET \$4`).
		WithArgs("found", "open", 50, 0).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(1, 2, "Wallet", nil, "Other", "found", "Lobby", "555", nil, "open", time.Now(), "Dana", nil))

	items, err := NewItemRepo(db).ListItems(context.Background(), models.ItemFilter{PostType: "found", Status: "open"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Wallet", items[0].ItemName)
	require.NotNil(t, items[0].OwnerName)
	assert.Equal(t, "Dana", *items[0].OwnerName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteItemNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM items`).WithArgs(3).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewItemRepo(db).DeleteItem(context.Background(), 3)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestMarkReadReturnsAffectedRows(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE messages SET read_at`).WithArgs(5, 2).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewMessageRepo(db).MarkRead(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGetContactNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM contacts WHERE id`).WithArgs(8).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewContactRepo(db).GetContact(context.Background(), 8)
	assert.ErrorIs(t, err, ErrContactNotFound)
}
