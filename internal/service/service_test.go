package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelftalk/shelftalk-server/internal/auth"
	"github.com/shelftalk/shelftalk-server/internal/domain"
	"github.com/shelftalk/shelftalk-server/internal/store"
)

// testServices bundles the services wired against temporary storage.
type testServices struct {
	Store   *store.Store
	Auth    *AuthService
	Books   *BookService
	Reviews *ReviewService
	Users   *UserService
}

// setupServices creates the service layer with a temporary database.
func setupServices(t *testing.T) *testServices {
	t.Helper()

	tmpDir := t.TempDir()

	s, err := store.New(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(authKey, 15*time.Minute)
	require.NoError(t, err)

	return &testServices{
		Store:   s,
		Auth:    NewAuthService(s, tokenService, nil),
		Books:   NewBookService(s, nil),
		Reviews: NewReviewService(s, nil),
		Users:   NewUserService(s, nil),
	}
}

// registerUser registers an account and returns the created user.
func registerUser(t *testing.T, svc *testServices, username, email string) *domain.User {
	t.Helper()

	resp, err := svc.Auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	return resp.User
}

// addBook creates a catalog entry for tests.
func addBook(t *testing.T, svc *testServices, title, author string) *domain.Book {
	t.Helper()

	book, err := svc.Books.Create(context.Background(), CreateBookRequest{
		Title:  title,
		Author: author,
	})
	require.NoError(t, err)
	return book
}
