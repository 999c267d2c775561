package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-server/internal/domain"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func makeUser(t *testing.T, s *Store, id, username, email string) *domain.User {
	t.Helper()

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "hashed",
		Role:         domain.RoleUser,
	}
	user.ID = id
	user.InitTimestamps()

	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func makeBook(t *testing.T, s *Store, id, title, author string) *domain.Book {
	t.Helper()

	book := &domain.Book{
		Title:  title,
		Author: author,
	}
	book.ID = id
	book.InitTimestamps()

	require.NoError(t, s.CreateBook(context.Background(), book))
	return book
}

func makeReview(t *testing.T, s *Store, id, userID, bookID string, rating int) *domain.Review {
	t.Helper()

	review := &domain.Review{
		UserID:  userID,
		BookID:  bookID,
		Rating:  rating,
		Comment: "a perfectly adequate book",
	}
	review.ID = id
	review.InitTimestamps()

	require.NoError(t, s.AddReview(context.Background(), review))
	return review
}
