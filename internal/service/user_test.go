package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-server/internal/domain"
	domainerrors "github.com/shelftalk/shelftalk-server/internal/errors"
)

func TestUserService_Get(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "alice", "alice@example.com")

	found, err := svc.Users.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)

	_, err = svc.Users.Get(ctx, "user_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestUserService_Update_OwnProfile(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "alice", "alice@example.com")

	newUsername := "alicia"
	updated, err := svc.Users.Update(ctx, user.ID, UpdateUserRequest{
		Username: &newUsername,
	}, user)
	require.NoError(t, err)
	assert.Equal(t, "alicia", updated.Username)
	// Email untouched.
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUserService_Update_PasswordRehash(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "alice", "alice@example.com")

	newPassword := "evenm0resecret"
	_, err := svc.Users.Update(ctx, user.ID, UpdateUserRequest{
		Password: &newPassword,
	}, user)
	require.NoError(t, err)

	// The old password stops working, the new one logs in.
	_, err = svc.Auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "sup3rsecret"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Auth.Login(ctx, LoginRequest{Email: "alice@example.com", Password: "evenm0resecret"})
	require.NoError(t, err)
}

func TestUserService_Update_OtherUserForbidden(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	alice := registerUser(t, svc, "alice", "alice@example.com")
	mallory := registerUser(t, svc, "mallory", "mallory@example.com")

	newUsername := "hacked"
	_, err := svc.Users.Update(ctx, alice.ID, UpdateUserRequest{
		Username: &newUsername,
	}, mallory)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestUserService_Update_TakenUsername(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	registerUser(t, svc, "alice", "alice@example.com")
	bob := registerUser(t, svc, "bob", "bob@example.com")

	taken := "alice"
	_, err := svc.Users.Update(ctx, bob.ID, UpdateUserRequest{
		Username: &taken,
	}, bob)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestUserService_Update_AdminCanEditOthers(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	alice := registerUser(t, svc, "alice", "alice@example.com")

	admin := &domain.User{Role: domain.RoleAdmin}
	admin.ID = "user_admin"

	newUsername := "renamed"
	updated, err := svc.Users.Update(ctx, alice.ID, UpdateUserRequest{
		Username: &newUsername,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
}

func TestUserService_Delete_CascadesReviews(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	alice := registerUser(t, svc, "alice", "alice@example.com")
	bob := registerUser(t, svc, "bob", "bob@example.com")
	book := addBook(t, svc, "Dune", "Frank Herbert")

	_, err := svc.Reviews.Create(ctx, alice.ID, book.ID, CreateReviewRequest{
		Rating:  5,
		Comment: "Loved every page.",
	})
	require.NoError(t, err)
	_, err = svc.Reviews.Create(ctx, bob.ID, book.ID, CreateReviewRequest{
		Rating:  1,
		Comment: "Could not get through it.",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Users.Delete(ctx, alice.ID, alice))

	_, err = svc.Users.Get(ctx, alice.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	// Only Bob's review remains and the rollup reflects it.
	fresh, err := svc.Books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Len(t, fresh.Reviews, 1)
	assert.InDelta(t, 1.0, fresh.AverageRating, 0.001)
}

func TestUserService_Delete_OtherUserForbidden(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	alice := registerUser(t, svc, "alice", "alice@example.com")
	mallory := registerUser(t, svc, "mallory", "mallory@example.com")

	err := svc.Users.Delete(ctx, alice.ID, mallory)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestUserService_Favorites(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "alice", "alice@example.com")
	book := addBook(t, svc, "Dune", "Frank Herbert")

	updated, err := svc.Users.AddFavorite(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Contains(t, updated.Favorites, book.ID)

	// Favoriting again is a no-op.
	again, err := svc.Users.AddFavorite(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Len(t, again.Favorites, 1)

	removed, err := svc.Users.RemoveFavorite(ctx, user.ID, book.ID)
	require.NoError(t, err)
	assert.Empty(t, removed.Favorites)

	// Removing an absent favorite is also a no-op.
	_, err = svc.Users.RemoveFavorite(ctx, user.ID, book.ID)
	require.NoError(t, err)
}

func TestUserService_AddFavorite_MissingBook(t *testing.T) {
	svc := setupServices(t)
	ctx := context.Background()

	user := registerUser(t, svc, "alice", "alice@example.com")

	_, err := svc.Users.AddFavorite(ctx, user.ID, "book_missing")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
