package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-server/internal/domain"
)

func TestCreateUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := makeUser(t, s, "user-test123", "reader", "test@example.com")

	retrieved, err := s.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
	assert.Equal(t, "reader", retrieved.Username)
	assert.Equal(t, "test@example.com", retrieved.Email)
}

func TestCreateUser_DuplicateID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "user-test123", "reader", "test@example.com")

	dup := &domain.User{Username: "other", Email: "other@example.com"}
	dup.ID = "user-test123"
	dup.InitTimestamps()

	err := s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "user-1", "reader1", "test@example.com")

	// Case-insensitive: differently-cased email still collides.
	dup := &domain.User{Username: "reader2", Email: "TEST@Example.com"}
	dup.ID = "user-2"
	dup.InitTimestamps()

	err := s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "user-1", "Reader", "one@example.com")

	dup := &domain.User{Username: "reader", Email: "two@example.com"}
	dup.ID = "user-2"
	dup.InitTimestamps()

	err := s.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestGetUser_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetUser(context.Background(), "user-nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := makeUser(t, s, "user-1", "reader", "Login@Example.com")

	retrieved, err := s.GetUserByEmail(ctx, "login@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)

	_, err = s.GetUserByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetUserByUsername(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := makeUser(t, s, "user-1", "Reader", "login@example.com")

	retrieved, err := s.GetUserByUsername(ctx, "reader")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)
}

func TestUpdateUser_ReindexesEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := makeUser(t, s, "user-1", "reader", "old@example.com")

	user.Email = "new@example.com"
	require.NoError(t, s.UpdateUser(ctx, user))

	// New email resolves, old one doesn't.
	retrieved, err := s.GetUserByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, retrieved.ID)

	_, err = s.GetUserByEmail(ctx, "old@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)

	// The freed email can be claimed by a new user.
	other := makeUser(t, s, "user-2", "other", "old@example.com")
	assert.Equal(t, "old@example.com", other.Email)
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "user-1", "reader1", "one@example.com")
	user2 := makeUser(t, s, "user-2", "reader2", "two@example.com")

	user2.Email = "one@example.com"
	err := s.UpdateUser(ctx, user2)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestDeleteUser_FreesIndexes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	user := makeUser(t, s, "user-1", "reader", "test@example.com")

	require.NoError(t, s.DeleteUser(ctx, user.ID))

	_, err := s.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// Email and username are reusable after deletion.
	makeUser(t, s, "user-2", "reader", "test@example.com")
}

func TestDeleteUser_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.DeleteUser(context.Background(), "user-nope")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	makeUser(t, s, "user-1", "reader1", "one@example.com")
	makeUser(t, s, "user-2", "reader2", "two@example.com")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
